package evernote

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// Field ids follow the EDAM Thrift IDL (Types.thrift, NoteStore.thrift, Errors.thrift).

func writeNoteFilter(ctx context.Context, p thrift.TProtocol, f NoteFilter) error {
	if err := p.WriteStructBegin(ctx, "NoteFilter"); err != nil {
		return err
	}
	if f.Order != 0 {
		if err := writeI32Field(ctx, p, "order", 1, int32(f.Order)); err != nil {
			return err
		}
	}
	if err := writeBoolField(ctx, p, "ascending", 2, f.Ascending); err != nil {
		return err
	}
	if f.Words != "" {
		if err := writeStringField(ctx, p, "words", 3, f.Words); err != nil {
			return err
		}
	}
	if f.NotebookGUID != "" {
		if err := writeStringField(ctx, p, "notebookGuid", 4, f.NotebookGUID); err != nil {
			return err
		}
	}
	if err := p.WriteFieldStop(ctx); err != nil {
		return err
	}
	return p.WriteStructEnd(ctx)
}

func readNote(ctx context.Context, p thrift.TProtocol) (*Note, error) {
	n := &Note{}
	err := readStruct(ctx, p, func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typ == thrift.STRING:
			n.GUID, err = p.ReadString(ctx)
		case id == 2 && typ == thrift.STRING:
			n.Title, err = p.ReadString(ctx)
		case id == 3 && typ == thrift.STRING:
			n.Content, err = p.ReadString(ctx)
		case id == 5 && typ == thrift.I32:
			n.ContentLength, err = p.ReadI32(ctx)
		case id == 6 && typ == thrift.I64:
			var ms int64
			ms, err = p.ReadI64(ctx)
			n.Created = fromTimestamp(ms)
		case id == 7 && typ == thrift.I64:
			var ms int64
			ms, err = p.ReadI64(ctx)
			n.Updated = fromTimestamp(ms)
		case id == 9 && typ == thrift.BOOL:
			n.Active, err = p.ReadBool(ctx)
		case id == 11 && typ == thrift.STRING:
			n.NotebookGUID, err = p.ReadString(ctx)
		case id == 12 && typ == thrift.LIST:
			n.TagGUIDs, err = readStringList(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func readNoteList(ctx context.Context, p thrift.TProtocol) (*NoteList, error) {
	nl := &NoteList{}
	err := readStruct(ctx, p, func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && typ == thrift.I32:
			nl.StartIndex, err = p.ReadI32(ctx)
		case id == 2 && typ == thrift.I32:
			nl.TotalNotes, err = p.ReadI32(ctx)
		case id == 3 && typ == thrift.LIST:
			var elemType thrift.TType
			var size int
			elemType, size, err = p.ReadListBegin(ctx)
			if err != nil {
				return true, err
			}
			if elemType != thrift.STRUCT {
				for i := 0; i < size; i++ {
					if err := p.Skip(ctx, elemType); err != nil {
						return true, err
					}
				}
				return true, p.ReadListEnd(ctx)
			}
			nl.Notes = make([]*Note, 0, size)
			for i := 0; i < size; i++ {
				n, err := readNote(ctx, p)
				if err != nil {
					return true, err
				}
				nl.Notes = append(nl.Notes, n)
			}
			err = p.ReadListEnd(ctx)
		default:
			return false, nil
		}
		return true, err
	})
	if err != nil {
		return nil, err
	}
	return nl, nil
}

func readStringList(ctx context.Context, p thrift.TProtocol) ([]string, error) {
	elemType, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for i := 0; i < size; i++ {
		if elemType != thrift.STRING {
			if err := p.Skip(ctx, elemType); err != nil {
				return nil, err
			}
			continue
		}
		s, err := p.ReadString(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, p.ReadListEnd(ctx)
}

func readUserException(ctx context.Context, p thrift.TProtocol) (*Error, error) {
	e := &Error{Kind: KindAuthorization}
	err := readStruct(ctx, p, func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		switch {
		case id == 1 && typ == thrift.I32:
			code, err := p.ReadI32(ctx)
			e.Code = ErrorCode(code)
			return true, err
		case id == 2 && typ == thrift.STRING:
			param, err := p.ReadString(ctx)
			e.Parameter = param
			return true, err
		}
		return false, nil
	})
	return e, err
}

func readSystemException(ctx context.Context, p thrift.TProtocol) (*Error, error) {
	e := &Error{Kind: KindRemoteSystem}
	err := readStruct(ctx, p, func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		switch {
		case id == 1 && typ == thrift.I32:
			code, err := p.ReadI32(ctx)
			e.Code = ErrorCode(code)
			return true, err
		case id == 2 && typ == thrift.STRING:
			msg, err := p.ReadString(ctx)
			e.Message = msg
			return true, err
		case id == 3 && typ == thrift.I32:
			d, err := p.ReadI32(ctx)
			e.RateLimitDuration = d
			return true, err
		}
		return false, nil
	})
	return e, err
}

func readNotFoundException(ctx context.Context, p thrift.TProtocol) (*Error, error) {
	e := &Error{Kind: KindNotFound}
	err := readStruct(ctx, p, func(ctx context.Context, p thrift.TProtocol, id int16, typ thrift.TType) (bool, error) {
		switch {
		case id == 1 && typ == thrift.STRING:
			ident, err := p.ReadString(ctx)
			e.Parameter = ident
			return true, err
		case id == 2 && typ == thrift.STRING:
			key, err := p.ReadString(ctx)
			e.Message = key
			return true, err
		}
		return false, nil
	})
	return e, err
}
