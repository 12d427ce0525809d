package evernote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/apache/thrift/lib/go/thrift"

	"github.com/teemow/tasknotes/internal/instrumentation"
)

// caller performs one Thrift binary-protocol call per HTTP POST.
// A fresh transport is created for every call so a caller can be shared
// between goroutines.
type caller struct {
	url        string
	service    string
	httpClient *http.Client
	userAgent  string
	conf       *thrift.TConfiguration
	metrics    *instrumentation.Metrics
}

func newCaller(url, service string, httpClient *http.Client, userAgent string, metrics *instrumentation.Metrics) *caller {
	return &caller{
		url:        url,
		service:    service,
		httpClient: httpClient,
		userAgent:  userAgent,
		conf:       &thrift.TConfiguration{},
		metrics:    metrics,
	}
}

// operations maps EDAM method names to metric label values.
var operations = map[string]string{
	"checkVersion":    instrumentation.OperationCheckVersion,
	"getNoteStoreUrl": instrumentation.OperationGetNoteStoreURL,
	"findNotes":       instrumentation.OperationFindNotes,
	"getNote":         instrumentation.OperationGetNote,
}

// fieldReader handles one field of a result struct. It returns false when the
// field is not recognized so the caller can skip it.
type fieldReader func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error)

// call sends method with the arguments written by writeArgs and decodes the
// reply's result struct with readResult. Every call gets a client span and is
// recorded in the EDAM operation metrics.
func (c *caller) call(ctx context.Context, method string, writeArgs func(context.Context, thrift.TProtocol) error, readResult fieldReader) error {
	operation, ok := operations[method]
	if !ok {
		operation = method
	}

	ctx, span := instrumentation.StartEvernoteSpan(ctx, c.service, operation)
	defer span.End()

	start := time.Now()
	err := c.roundTrip(ctx, method, writeArgs, readResult)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordEvernoteError(ctx, operation, KindOf(err).String())
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordEvernoteOperation(ctx, c.service, operation, status, time.Since(start))
	return err
}

func (c *caller) roundTrip(ctx context.Context, method string, writeArgs func(context.Context, thrift.TProtocol) error, readResult fieldReader) error {
	trans, err := thrift.NewTHttpClientWithOptions(c.url, thrift.THttpClientOptions{Client: c.httpClient})
	if err != nil {
		return newTransportError(err)
	}
	if hc, ok := trans.(*thrift.THttpClient); ok && c.userAgent != "" {
		hc.SetHeader("User-Agent", c.userAgent)
	}
	defer trans.Close()

	p := thrift.NewTBinaryProtocolConf(trans, c.conf)

	if err := p.WriteMessageBegin(ctx, method, thrift.CALL, 1); err != nil {
		return newTransportError(err)
	}
	if err := p.WriteStructBegin(ctx, method+"_args"); err != nil {
		return newTransportError(err)
	}
	if err := writeArgs(ctx, p); err != nil {
		return newTransportError(err)
	}
	if err := p.WriteFieldStop(ctx); err != nil {
		return newTransportError(err)
	}
	if err := p.WriteStructEnd(ctx); err != nil {
		return newTransportError(err)
	}
	if err := p.WriteMessageEnd(ctx); err != nil {
		return newTransportError(err)
	}
	if err := p.Flush(ctx); err != nil {
		return newTransportError(err)
	}

	name, mtype, _, err := p.ReadMessageBegin(ctx)
	if err != nil {
		return newTransportError(err)
	}
	if mtype == thrift.EXCEPTION {
		appErr := thrift.NewTApplicationException(thrift.UNKNOWN_APPLICATION_EXCEPTION, "")
		if err := appErr.Read(ctx, p); err != nil {
			return newTransportError(err)
		}
		_ = p.ReadMessageEnd(ctx)
		return &Error{Kind: KindRemoteSystem, Code: CodeUnknown, Message: appErr.Error(), Err: appErr}
	}
	if name != method {
		return newTransportError(fmt.Errorf("%s: wrong method name in reply: %q", method, name))
	}
	if mtype != thrift.REPLY {
		return newTransportError(fmt.Errorf("%s: unexpected message type %d", method, mtype))
	}

	var remoteErr error
	if err := readStruct(ctx, p, func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		if id == 0 {
			return readResult(ctx, p, id, typ)
		}
		if typ != thrift.STRUCT {
			return false, nil
		}
		// Declared exceptions: 1 user, 2 system, 3 not found.
		switch id {
		case 1:
			e, err := readUserException(ctx, p)
			if err != nil {
				return true, err
			}
			remoteErr = e
		case 2:
			e, err := readSystemException(ctx, p)
			if err != nil {
				return true, err
			}
			remoteErr = e
		case 3:
			e, err := readNotFoundException(ctx, p)
			if err != nil {
				return true, err
			}
			remoteErr = e
		default:
			return false, nil
		}
		return true, nil
	}); err != nil {
		return newTransportError(err)
	}
	if err := p.ReadMessageEnd(ctx); err != nil {
		return newTransportError(err)
	}
	return remoteErr
}

// readStruct walks the fields of a struct, delegating each to fn and skipping
// any field fn does not handle.
func readStruct(ctx context.Context, p thrift.TProtocol, fn fieldReader) error {
	if _, err := p.ReadStructBegin(ctx); err != nil {
		return err
	}
	for {
		_, typ, id, err := p.ReadFieldBegin(ctx)
		if err != nil {
			return err
		}
		if typ == thrift.STOP {
			break
		}
		handled, err := fn(ctx, p, id, typ)
		if err != nil {
			return err
		}
		if !handled {
			if err := p.Skip(ctx, typ); err != nil {
				return err
			}
		}
		if err := p.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	return p.ReadStructEnd(ctx)
}

func writeStringField(ctx context.Context, p thrift.TProtocol, name string, id int16, v string) error {
	if err := p.WriteFieldBegin(ctx, name, thrift.STRING, id); err != nil {
		return err
	}
	if err := p.WriteString(ctx, v); err != nil {
		return err
	}
	return p.WriteFieldEnd(ctx)
}

func writeBoolField(ctx context.Context, p thrift.TProtocol, name string, id int16, v bool) error {
	if err := p.WriteFieldBegin(ctx, name, thrift.BOOL, id); err != nil {
		return err
	}
	if err := p.WriteBool(ctx, v); err != nil {
		return err
	}
	return p.WriteFieldEnd(ctx)
}

func writeI16Field(ctx context.Context, p thrift.TProtocol, name string, id int16, v int16) error {
	if err := p.WriteFieldBegin(ctx, name, thrift.I16, id); err != nil {
		return err
	}
	if err := p.WriteI16(ctx, v); err != nil {
		return err
	}
	return p.WriteFieldEnd(ctx)
}

func writeI32Field(ctx context.Context, p thrift.TProtocol, name string, id int16, v int32) error {
	if err := p.WriteFieldBegin(ctx, name, thrift.I32, id); err != nil {
		return err
	}
	if err := p.WriteI32(ctx, v); err != nil {
		return err
	}
	return p.WriteFieldEnd(ctx)
}
