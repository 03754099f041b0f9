package dbconn

import (
	"errors"
	"reflect"
)

type MockGormWrapper interface {
	GormWrapper
	Created() []interface{}
	Saved() []interface{}
	Chain() *QueryChain
	SetError(error) MockGormWrapper
	SetResult(interface{}) MockGormWrapper
}

type mockGormWrapper struct {
	error   error
	created []interface{}
	saved   []interface{}
	chain   *QueryChain
	result  interface{}
}

type QueryChain struct {
	Where WhereQuery
	Order interface{}
	Limit int
	Conds []interface{}
}

type WhereQuery struct {
	Query interface{}
	Args  []interface{}
}

func Mock() MockGormWrapper {
	return &mockGormWrapper{}
}

func (w *mockGormWrapper) Created() []interface{} {
	return w.created
}

func (w *mockGormWrapper) Saved() []interface{} {
	return w.saved
}

func (w *mockGormWrapper) Chain() *QueryChain {
	return w.chain
}

func (w *mockGormWrapper) SetError(e error) MockGormWrapper {
	w.error = e
	return w
}

func (w *mockGormWrapper) SetResult(r interface{}) MockGormWrapper {
	w.result = r
	return w
}

func (w *mockGormWrapper) Error() error {
	return w.error
}

func (w *mockGormWrapper) Create(value interface{}) GormWrapper {
	if w.error == nil {
		w.created = append(w.created, value)
	}
	return w
}

func (w *mockGormWrapper) Save(value interface{}) GormWrapper {
	if w.error == nil {
		w.saved = append(w.saved, value)
	}
	return w
}

func (w *mockGormWrapper) currentChain() *QueryChain {
	if w.chain == nil {
		w.chain = &QueryChain{}
	}
	return w.chain
}

func (w *mockGormWrapper) Where(query interface{}, args ...interface{}) GormWrapper {
	w.chain = &QueryChain{
		Where: WhereQuery{
			Query: query,
			Args:  args,
		},
	}
	return w
}

func (w *mockGormWrapper) Order(value interface{}) GormWrapper {
	w.currentChain().Order = value
	return w
}

func (w *mockGormWrapper) Limit(limit int) GormWrapper {
	w.currentChain().Limit = limit
	return w
}

func (w *mockGormWrapper) First(dest interface{}, conds ...interface{}) GormWrapper {
	if w.chain == nil {
		w.error = errors.New("need to call query first")
		return w
	}
	return w.load(dest, conds)
}

func (w *mockGormWrapper) Find(dest interface{}, conds ...interface{}) GormWrapper {
	w.currentChain()
	return w.load(dest, conds)
}

func (w *mockGormWrapper) load(dest interface{}, conds []interface{}) GormWrapper {
	w.chain.Conds = conds
	if w.error != nil {
		return w
	}
	if w.result == nil {
		w.error = errors.New("record not found")
		return w
	}
	w.error = Replace(dest, w.result)
	return w
}

func Replace(i, v interface{}) error {
	val := reflect.ValueOf(i)
	if val.Kind() != reflect.Ptr {
		return errors.New("not a pointer")
	}

	val = val.Elem()

	newVal := reflect.Indirect(reflect.ValueOf(v))

	if !newVal.Type().AssignableTo(val.Type()) {
		return errors.New("mismatched types")
	}

	val.Set(newVal)
	return nil
}
