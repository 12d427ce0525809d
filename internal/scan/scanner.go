package scan

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/teemow/tasknotes/internal/evernote"
	"github.com/teemow/tasknotes/internal/instrumentation"
	"github.com/teemow/tasknotes/internal/logging"
)

// DefaultPageSize is the number of note summaries requested per search call.
const DefaultPageSize = 500

// NoteStore is the subset of the note store a scan needs.
type NoteStore interface {
	FindNotes(ctx context.Context, filter evernote.NoteFilter, offset, maxNotes int) (*evernote.NoteList, error)
	GetNote(ctx context.Context, guid string, opts evernote.GetNoteOptions) (*evernote.Note, error)
}

// Options tunes a Scanner. The zero value scans the first page of notes
// titled with DefaultTitleFilter.
type Options struct {
	TitleFilter string
	Tags        []string
	Words       string
	PageSize    int
	// AllPages keeps paging until every matching note has been scanned.
	AllPages bool
	// KeepTasks records the matched task texts per note in the result.
	KeepTasks bool
}

// DefaultTitleFilter is the note title searched when none is configured.
const DefaultTitleFilter = "Дела"

// NoteTasks is the per-note breakdown of a scan.
type NoteTasks struct {
	GUID    string    `json:"guid" yaml:"guid"`
	Title   string    `json:"title" yaml:"title"`
	Created time.Time `json:"created" yaml:"created"`
	Count   int       `json:"count" yaml:"count"`
	Tasks   []string  `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// Result is the outcome of one complete scan.
type Result struct {
	RunID      string      `json:"runId" yaml:"runId"`
	Query      string      `json:"query" yaml:"query"`
	From       time.Time   `json:"from" yaml:"from"`
	To         time.Time   `json:"to" yaml:"to"`
	TotalNotes int         `json:"totalNotes" yaml:"totalNotes"`
	Fetched    int         `json:"fetched" yaml:"fetched"`
	Tasks      int         `json:"tasks" yaml:"tasks"`
	Truncated  bool        `json:"truncated" yaml:"truncated"`
	Notes      []NoteTasks `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Progress receives scan milestones as they happen. Any callback may be nil.
type Progress struct {
	// Searching is called with the rendered query before the first search.
	Searching func(query string)
	// Found is called with the service's total once the first page arrives.
	Found func(total int)
	// Note is called after each note has been scanned.
	Note func(note NoteTasks)
}

// Scanner counts task lines in the notes created during a calendar month.
type Scanner struct {
	store   NoteStore
	opts    Options
	logger  logging.Logger
	metrics *instrumentation.Metrics
	now     func() time.Time
}

// NewScanner returns a Scanner reading from store. logger and metrics may be nil.
func NewScanner(store NoteStore, opts Options, logger logging.Logger, metrics *instrumentation.Metrics) *Scanner {
	if opts.TitleFilter == "" {
		opts.TitleFilter = DefaultTitleFilter
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scanner{
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Query builds the search query for the month monthsBack months before now.
func (s *Scanner) Query(monthsBack int) Query {
	return Query{
		TitleFilter: s.opts.TitleFilter,
		Tags:        s.opts.Tags,
		Words:       s.opts.Words,
		Window:      MonthWindow(s.now(), monthsBack),
	}
}

// Run searches the month monthsBack months ago and counts the tasks in every
// matching note, one note at a time in search order. Any remote error aborts
// the run and no partial result is returned.
func (s *Scanner) Run(ctx context.Context, monthsBack int, progress *Progress) (*Result, error) {
	if progress == nil {
		progress = &Progress{}
	}

	query := s.Query(monthsBack)
	result := &Result{
		RunID: uuid.NewString(),
		Query: query.String(),
		From:  query.Window.From,
		To:    query.Window.To,
	}

	ctx, span := instrumentation.StartSpan(ctx, "scan.run",
		instrumentation.NewSpanAttributeBuilder().
			WithQuery(result.Query).
			WithMonthsBack(monthsBack).
			WithRunID(result.RunID).
			Build()...)
	defer span.End()

	logger := s.logger.With(logging.RunID(result.RunID))

	if progress.Searching != nil {
		progress.Searching(result.Query)
	}
	logger.Debug("searching notes", logging.Query(result.Query))

	if err := s.scan(ctx, query, result, progress, logger); err != nil {
		instrumentation.SetSpanError(span, err)
		s.metrics.RecordScan(ctx, instrumentation.ScanResultFailed, 0, 0)
		logger.Debug("scan aborted", logging.Err(err))
		return nil, err
	}

	outcome := instrumentation.ScanResultComplete
	if result.Truncated {
		outcome = instrumentation.ScanResultTruncated
		logger.Warn("only the first page of matching notes was scanned",
			"total", result.TotalNotes,
			"fetched", result.Fetched)
	}
	instrumentation.SetSpanSuccess(span)
	s.metrics.RecordScan(ctx, outcome, result.Fetched, result.Tasks)

	return result, nil
}

func (s *Scanner) scan(ctx context.Context, query Query, result *Result, progress *Progress, logger logging.Logger) error {
	filter := evernote.NoteFilter{
		Order:     evernote.SortUpdated,
		Ascending: false,
		Words:     query.String(),
	}

	offset := 0
	for page := 0; ; page++ {
		list, err := s.store.FindNotes(ctx, filter, offset, s.opts.PageSize)
		if err != nil {
			return err
		}
		if list == nil {
			return errors.New("search returned no note list")
		}

		if page == 0 {
			result.TotalNotes = int(list.TotalNotes)
			if progress.Found != nil {
				progress.Found(result.TotalNotes)
			}
		}

		for _, summary := range list.Notes {
			nt, err := s.scanNote(ctx, summary.GUID)
			if err != nil {
				return err
			}
			result.Fetched++
			result.Tasks += nt.Count
			result.Notes = append(result.Notes, nt)
			if progress.Note != nil {
				progress.Note(nt)
			}
			logger.Debug("scanned note", logging.NoteGUID(nt.GUID), "tasks", nt.Count)
		}

		offset += len(list.Notes)
		if len(list.Notes) == 0 || offset >= int(list.TotalNotes) {
			return nil
		}
		if !s.opts.AllPages {
			result.Truncated = true
			return nil
		}
	}
}

func (s *Scanner) scanNote(ctx context.Context, guid string) (NoteTasks, error) {
	note, err := s.store.GetNote(ctx, guid, evernote.ScanNoteOptions)
	if err != nil {
		return NoteTasks{}, err
	}

	nt := NoteTasks{
		GUID:    note.GUID,
		Title:   note.Title,
		Created: note.Created,
		Count:   CountTasks(note.Content),
	}
	if nt.GUID == "" {
		nt.GUID = guid
	}
	if s.opts.KeepTasks {
		nt.Tasks = FindTasks(note.Content)
	}
	return nt, nil
}
