package command

import "github.com/ehrlich-b/pedis/internal/keyspace"

// newTestContext builds a Context over a fresh 2-database Keyspace bound
// to DB 0, for use across this package's _test.go files.
func newTestContext(argv ...string) *Context {
	ks := keyspace.New(2)
	ctx := &Context{
		Keyspace: ks,
		DBIndex:  0,
		Select: func(idx int) error {
			if _, err := ks.DB(idx); err != nil {
				return err
			}
			return nil
		},
	}
	for _, a := range argv {
		ctx.Argv = append(ctx.Argv, []byte(a))
	}
	return ctx
}

type fakePersistence struct {
	saveErr     error
	bgsaveErr   error
	lastSave    int64
	shutdownOK  bool
	bgsaveCalls int
}

func (f *fakePersistence) Save() error { return f.saveErr }
func (f *fakePersistence) BGSave() error {
	f.bgsaveCalls++
	return f.bgsaveErr
}
func (f *fakePersistence) LastSave() int64    { return f.lastSave }
func (f *fakePersistence) Shutdown() bool     { return f.shutdownOK }
