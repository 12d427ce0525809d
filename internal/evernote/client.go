package evernote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/apache/thrift/lib/go/thrift"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/teemow/tasknotes/internal/instrumentation"
)

// UserStore is the account-level capability used during session setup.
type UserStore interface {
	CheckVersion(ctx context.Context, clientName string, major, minor int16) (bool, error)
	GetNoteStoreURL(ctx context.Context) (string, error)
}

// UserStoreClient talks to <host>/edam/user
type UserStoreClient struct {
	caller *caller
	tokens oauth2.TokenSource
}

// NoteStoreClient talks to the per-shard note store URL returned by the user store
type NoteStoreClient struct {
	caller *caller
	tokens oauth2.TokenSource
}

// SessionConfig configures NewSession
type SessionConfig struct {
	// ServiceURL is the service host, e.g. ProductionHost.
	ServiceURL string
	// ClientName is sent with checkVersion and as the User-Agent.
	ClientName string
	// TokenSource supplies the developer or OAuth access token.
	TokenSource oauth2.TokenSource
	// HTTPClient is optional; a client with OpenTelemetry transport
	// instrumentation is used when nil.
	HTTPClient *http.Client
	// Metrics records EDAM operations. May be nil.
	Metrics *instrumentation.Metrics
}

// Session holds the two remote clients for one authenticated account.
type Session struct {
	userStore UserStore
	noteStore *NoteStoreClient
}

// NewUserStoreClient creates a user store client for the given service host
func NewUserStoreClient(serviceURL, clientName string, tokens oauth2.TokenSource, httpClient *http.Client, metrics *instrumentation.Metrics) *UserStoreClient {
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	url := strings.TrimRight(serviceURL, "/") + userStorePath
	return &UserStoreClient{
		caller: newCaller(url, instrumentation.ServiceUserStore, httpClient, clientName, metrics),
		tokens: tokens,
	}
}

// NewNoteStoreClient creates a note store client for a note store URL
func NewNoteStoreClient(noteStoreURL, clientName string, tokens oauth2.TokenSource, httpClient *http.Client, metrics *instrumentation.Metrics) *NoteStoreClient {
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	return &NoteStoreClient{
		caller: newCaller(noteStoreURL, instrumentation.ServiceNoteStore, httpClient, clientName, metrics),
		tokens: tokens,
	}
}

// NewSession connects to the user store, verifies protocol compatibility and
// resolves the note store. A single attempt is made for each call.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	if cfg.TokenSource == nil {
		return nil, NewConfigurationError("no token source configured")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}

	userStore := NewUserStoreClient(ServiceURL(cfg.ServiceURL), cfg.ClientName, cfg.TokenSource, httpClient, cfg.Metrics)
	return newSession(ctx, userStore, cfg, httpClient)
}

func newSession(ctx context.Context, userStore UserStore, cfg SessionConfig, httpClient *http.Client) (*Session, error) {
	ok, err := userStore.CheckVersion(ctx, cfg.ClientName, EDAMVersionMajor, EDAMVersionMinor)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIncompatibleVersion
	}

	noteStoreURL, err := userStore.GetNoteStoreURL(ctx)
	if err != nil {
		return nil, err
	}

	return &Session{
		userStore: userStore,
		noteStore: NewNoteStoreClient(noteStoreURL, cfg.ClientName, cfg.TokenSource, httpClient, cfg.Metrics),
	}, nil
}

// UserStore returns the account client
func (s *Session) UserStore() UserStore {
	return s.userStore
}

// NoteStore returns the note store client
func (s *Session) NoteStore() *NoteStoreClient {
	return s.noteStore
}

// CheckVersion asks the service whether this client's EDAM version is supported
func (c *UserStoreClient) CheckVersion(ctx context.Context, clientName string, major, minor int16) (bool, error) {
	var compatible bool
	err := c.caller.call(ctx, "checkVersion",
		func(ctx context.Context, p thrift.TProtocol) error {
			if err := writeStringField(ctx, p, "clientName", 1, clientName); err != nil {
				return err
			}
			if err := writeI16Field(ctx, p, "edamVersionMajor", 2, major); err != nil {
				return err
			}
			return writeI16Field(ctx, p, "edamVersionMinor", 3, minor)
		},
		func(ctx context.Context, p thrift.TProtocol, _ int16, typ thrift.TType) (bool, error) {
			if typ != thrift.BOOL {
				return false, nil
			}
			v, err := p.ReadBool(ctx)
			compatible = v
			return true, err
		})
	if err != nil {
		return false, err
	}
	return compatible, nil
}

// GetNoteStoreURL returns the note store URL for the authenticated user
func (c *UserStoreClient) GetNoteStoreURL(ctx context.Context) (string, error) {
	token, err := accessToken(c.tokens)
	if err != nil {
		return "", err
	}

	var url string
	err = c.caller.call(ctx, "getNoteStoreUrl",
		func(ctx context.Context, p thrift.TProtocol) error {
			return writeStringField(ctx, p, "authenticationToken", 1, token)
		},
		func(ctx context.Context, p thrift.TProtocol, _ int16, typ thrift.TType) (bool, error) {
			if typ != thrift.STRING {
				return false, nil
			}
			v, err := p.ReadString(ctx)
			url = v
			return true, err
		})
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", &Error{Kind: KindRemoteSystem, Code: CodeUnknown, Message: "empty note store URL"}
	}
	return url, nil
}

// FindNotes runs a search and returns one page of note metadata. Content and
// resource data are never included in the results.
func (c *NoteStoreClient) FindNotes(ctx context.Context, filter NoteFilter, offset, maxNotes int) (*NoteList, error) {
	token, err := accessToken(c.tokens)
	if err != nil {
		return nil, err
	}

	var result *NoteList
	err = c.caller.call(ctx, "findNotes",
		func(ctx context.Context, p thrift.TProtocol) error {
			if err := writeStringField(ctx, p, "authenticationToken", 1, token); err != nil {
				return err
			}
			if err := p.WriteFieldBegin(ctx, "filter", thrift.STRUCT, 2); err != nil {
				return err
			}
			if err := writeNoteFilter(ctx, p, filter); err != nil {
				return err
			}
			if err := p.WriteFieldEnd(ctx); err != nil {
				return err
			}
			if err := writeI32Field(ctx, p, "offset", 3, int32(offset)); err != nil {
				return err
			}
			return writeI32Field(ctx, p, "maxNotes", 4, int32(maxNotes))
		},
		func(ctx context.Context, p thrift.TProtocol, _ int16, typ thrift.TType) (bool, error) {
			if typ != thrift.STRUCT {
				return false, nil
			}
			nl, err := readNoteList(ctx, p)
			result = nl
			return true, err
		})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, &Error{Kind: KindRemoteSystem, Code: CodeUnknown, Message: "findNotes returned no result"}
	}
	return result, nil
}

// GetNote fetches a single note by GUID
func (c *NoteStoreClient) GetNote(ctx context.Context, guid string, opts GetNoteOptions) (*Note, error) {
	token, err := accessToken(c.tokens)
	if err != nil {
		return nil, err
	}

	var note *Note
	err = c.caller.call(ctx, "getNote",
		func(ctx context.Context, p thrift.TProtocol) error {
			if err := writeStringField(ctx, p, "authenticationToken", 1, token); err != nil {
				return err
			}
			if err := writeStringField(ctx, p, "guid", 2, guid); err != nil {
				return err
			}
			if err := writeBoolField(ctx, p, "withContent", 3, opts.WithContent); err != nil {
				return err
			}
			if err := writeBoolField(ctx, p, "withResourcesData", 4, opts.WithResourcesData); err != nil {
				return err
			}
			if err := writeBoolField(ctx, p, "withResourcesRecognition", 5, opts.WithResourcesRecognition); err != nil {
				return err
			}
			return writeBoolField(ctx, p, "withResourcesAlternateData", 6, opts.WithResourcesAlternateData)
		},
		func(ctx context.Context, p thrift.TProtocol, _ int16, typ thrift.TType) (bool, error) {
			if typ != thrift.STRUCT {
				return false, nil
			}
			n, err := readNote(ctx, p)
			note = n
			return true, err
		})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, &Error{Kind: KindRemoteSystem, Code: CodeUnknown, Message: fmt.Sprintf("getNote returned no result for %s", guid)}
	}
	return note, nil
}

func accessToken(ts oauth2.TokenSource) (string, error) {
	if ts == nil {
		return "", NewConfigurationError("no token source configured")
	}
	t, err := ts.Token()
	if err != nil {
		return "", NewConfigurationError(fmt.Sprintf("failed to obtain access token: %v", err))
	}
	if t.AccessToken == "" {
		return "", NewConfigurationError("access token is empty")
	}
	return t.AccessToken, nil
}

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}
