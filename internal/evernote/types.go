package evernote

import (
	"strconv"
	"time"
)

// EDAM protocol version this client speaks. The user store rejects clients
// whose major version differs or whose minor version is newer than its own.
const (
	EDAMVersionMajor int16 = 1
	EDAMVersionMinor int16 = 28
)

// Service hosts. The user store lives at <host>/edam/user.
const (
	ProductionHost = "https://www.evernote.com"
	SandboxHost    = "https://sandbox.evernote.com"

	userStorePath = "/edam/user"
)

// ServiceURL returns the base URL for a named service ("production", "sandbox")
// or returns the value unchanged when it already looks like a URL.
func ServiceURL(service string) string {
	switch service {
	case "", "production":
		return ProductionHost
	case "sandbox":
		return SandboxHost
	default:
		return service
	}
}

// SortOrder mirrors the EDAM NoteSortOrder enumeration.
type SortOrder int32

const (
	SortCreated              SortOrder = 1
	SortUpdated              SortOrder = 2
	SortRelevance            SortOrder = 3
	SortUpdateSequenceNumber SortOrder = 4
	SortTitle                SortOrder = 5
)

// NoteFilter selects notes in a findNotes call.
type NoteFilter struct {
	Order     SortOrder
	Ascending bool
	// Words is a query in the Evernote search grammar, e.g.
	// "intitle:Groceries tag:home created:20240101 -created:20240201".
	Words        string
	NotebookGUID string
}

// Note is a note as returned by the note store. Notes returned by FindNotes
// carry metadata only; Content is populated by GetNote.
type Note struct {
	GUID          string    `json:"guid" yaml:"guid"`
	Title         string    `json:"title" yaml:"title"`
	Content       string    `json:"-" yaml:"-"`
	ContentLength int32     `json:"contentLength,omitempty" yaml:"contentLength,omitempty"`
	Created       time.Time `json:"created" yaml:"created"`
	Updated       time.Time `json:"updated" yaml:"updated"`
	Active        bool      `json:"active" yaml:"active"`
	NotebookGUID  string    `json:"notebookGuid,omitempty" yaml:"notebookGuid,omitempty"`
	TagGUIDs      []string  `json:"tagGuids,omitempty" yaml:"tagGuids,omitempty"`
}

// NoteList is one page of search results. TotalNotes may exceed len(Notes).
type NoteList struct {
	StartIndex int32
	TotalNotes int32
	Notes      []*Note
}

// GetNoteOptions selects which parts of a note GetNote returns.
type GetNoteOptions struct {
	WithContent                bool
	WithResourcesData          bool
	WithResourcesRecognition   bool
	WithResourcesAlternateData bool
}

// ScanNoteOptions is the fixed option set used when scanning notes for tasks.
var ScanNoteOptions = GetNoteOptions{
	WithContent:                true,
	WithResourcesData:          true,
	WithResourcesRecognition:   false,
	WithResourcesAlternateData: false,
}

// ErrorCode mirrors the EDAMErrorCode enumeration.
type ErrorCode int32

const (
	CodeUnknown                       ErrorCode = 1
	CodeBadDataFormat                 ErrorCode = 2
	CodePermissionDenied              ErrorCode = 3
	CodeInternalError                 ErrorCode = 4
	CodeDataRequired                  ErrorCode = 5
	CodeLimitReached                  ErrorCode = 6
	CodeQuotaReached                  ErrorCode = 7
	CodeInvalidAuth                   ErrorCode = 8
	CodeAuthExpired                   ErrorCode = 9
	CodeDataConflict                  ErrorCode = 10
	CodeENMLValidation                ErrorCode = 11
	CodeShardUnavailable              ErrorCode = 12
	CodeLenTooShort                   ErrorCode = 13
	CodeLenTooLong                    ErrorCode = 14
	CodeTooFew                        ErrorCode = 15
	CodeTooMany                       ErrorCode = 16
	CodeUnsupportedOperation          ErrorCode = 17
	CodeTakenDown                     ErrorCode = 18
	CodeRateLimitReached              ErrorCode = 19
	CodeBusinessSecurityLoginRequired ErrorCode = 20
	CodeDeviceLimitReached            ErrorCode = 21
)

var errorCodeNames = map[ErrorCode]string{
	CodeUnknown:                       "UNKNOWN",
	CodeBadDataFormat:                 "BAD_DATA_FORMAT",
	CodePermissionDenied:              "PERMISSION_DENIED",
	CodeInternalError:                 "INTERNAL_ERROR",
	CodeDataRequired:                  "DATA_REQUIRED",
	CodeLimitReached:                  "LIMIT_REACHED",
	CodeQuotaReached:                  "QUOTA_REACHED",
	CodeInvalidAuth:                   "INVALID_AUTH",
	CodeAuthExpired:                   "AUTH_EXPIRED",
	CodeDataConflict:                  "DATA_CONFLICT",
	CodeENMLValidation:                "ENML_VALIDATION",
	CodeShardUnavailable:              "SHARD_UNAVAILABLE",
	CodeLenTooShort:                   "LEN_TOO_SHORT",
	CodeLenTooLong:                    "LEN_TOO_LONG",
	CodeTooFew:                        "TOO_FEW",
	CodeTooMany:                       "TOO_MANY",
	CodeUnsupportedOperation:          "UNSUPPORTED_OPERATION",
	CodeTakenDown:                     "TAKEN_DOWN",
	CodeRateLimitReached:              "RATE_LIMIT_REACHED",
	CodeBusinessSecurityLoginRequired: "BUSINESS_SECURITY_LOGIN_REQUIRED",
	CodeDeviceLimitReached:            "DEVICE_LIMIT_REACHED",
}

// String returns the EDAM name of the code, e.g. "AUTH_EXPIRED".
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "ErrorCode(" + strconv.Itoa(int(c)) + ")"
}

// fromTimestamp converts an EDAM timestamp (milliseconds since the epoch).
func fromTimestamp(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
