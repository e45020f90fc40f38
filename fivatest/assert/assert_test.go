package assert

import (
	"fmt"
	"testing"

	"github.com/iov-one/fiva/errors"
)

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		ErrWant  error
		ErrGot   error
		WantFail bool
	}{
		"same error": {
			ErrWant: errors.ErrEmpty,
			ErrGot:  errors.ErrEmpty,
		},
		"compared to nil": {
			ErrWant:  nil,
			ErrGot:   errors.ErrEmpty,
			WantFail: true,
		},
		"both nil": {
			ErrWant: nil,
			ErrGot:  nil,
		},
		"wrapped": {
			ErrWant: errors.ErrEmpty,
			ErrGot:  errors.Wrap(errors.ErrEmpty, "test"),
		},
		"different": {
			ErrWant:  errors.ErrEmpty,
			ErrGot:   errors.ErrInvariant,
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{}
			IsErr(mock, tc.ErrWant, tc.ErrGot)
			if failed := mock.failcalls > 0; tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestIsNil(t *testing.T) {
	var nilErr *errors.Error
	cases := map[string]struct {
		Value interface{}
		Want  bool
	}{
		"nil":           {Value: nil, Want: true},
		"typed nil":     {Value: nilErr, Want: true},
		"not nil":       {Value: errors.ErrEmpty, Want: false},
		"not nilable":   {Value: 42, Want: false},
		"empty slice":   {Value: []int{}, Want: false},
		"nil map value": {Value: map[string]int(nil), Want: true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := isNil(tc.Value); got != tc.Want {
				t.Fatalf("want %v, got %v", tc.Want, got)
			}
		})
	}
}

// tmock records failures instead of stopping the test.
type tmock struct {
	failcalls int
}

func (m *tmock) Helper() {}

func (m *tmock) Fatal(args ...interface{}) {
	m.failcalls++
}

func (m *tmock) Fatalf(format string, args ...interface{}) {
	m.Fatal(fmt.Sprintf(format, args...))
}
