package pager

import "testing"

func TestNewCapCodeBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      int
		wantErr bool
	}{
		{0, true},
		{10000, true},
		{-1, true},
		{1, false},
		{9999, false},
		{1234, false},
	}
	for _, tc := range cases {
		c, err := NewCapCode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NewCapCode(%d): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewCapCode(%d): %v", tc.in, err)
			continue
		}
		if c.Int() != tc.in {
			t.Errorf("NewCapCode(%d).Int() = %d", tc.in, c.Int())
		}
	}
}

func TestNewSlotBounds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      int
		wantErr bool
	}{
		{-1, true},
		{8, true},
		{0, false},
		{7, false},
	}
	for _, tc := range cases {
		s, err := NewSlot(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NewSlot(%d): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewSlot(%d): %v", tc.in, err)
			continue
		}
		if s.Int() != tc.in {
			t.Errorf("NewSlot(%d).Int() = %d", tc.in, s.Int())
		}
	}
}

func TestMustCapCodePanicsOutOfBounds(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustCapCode(0)
}
