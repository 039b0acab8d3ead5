package vip

import (
	"context"
	"testing"
	"time"

	"archives/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guestList() []models.VIPEntry {
	return []models.VIPEntry{
		{ID: 1, Names: "Aditi, adu", Date: "2020-02-14", Message: "You were here first."},
		{ID: 2, Names: "sam", Date: "2000-03-01", Message: "Hello again, Sam."},
	}
}

func TestMatchName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		wantID uint
		ok     bool
	}{
		{"ADITI", 1, true},
		{" adu ", 1, true},
		{"adi", 0, false},
		{"Sam", 2, true},
		{"", 0, false},
		{"   ", 0, false},
		{"aditi, adu", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			entry, ok := MatchName(guestList(), tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.wantID, entry.ID)
			}
		})
	}
}

func TestSameMonthDay(t *testing.T) {
	t.Parallel()
	assert.True(t, SameMonthDay("2099-02-14", "2020-02-14"))
	assert.False(t, SameMonthDay("2020-02-15", "2020-02-14"))
	assert.True(t, SameMonthDay("2030-03-01", "2000-03-01T00:00:00Z"))
	assert.True(t, SameMonthDay("2023-02-29", "2020-02-29"))
	assert.False(t, SameMonthDay("", "2020-02-14"))
	assert.False(t, SameMonthDay("02/14/2020", "2020-02-14"))
	assert.False(t, SameMonthDay("2020-02-14", ""))
}

func TestFlow_HappyPath(t *testing.T) {
	t.Parallel()
	f := NewFlow()
	f.Open(guestList())
	assert.Equal(t, StepIntro, f.Step)

	require.NoError(t, f.Accept())
	assert.Equal(t, StepName, f.Step)

	ok, err := f.SubmitName("Sam")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StepDate, f.Step)

	ok, err = f.SubmitDate("2030-03-01")
	require.NoError(t, err)
	assert.True(t, ok)

	v := f.View()
	assert.Equal(t, StepSuccess, v.Step)
	assert.Equal(t, "Welcome, Sam.", v.Greeting)
	assert.Equal(t, "Hello again, Sam.", v.Message)
}

func TestFlow_SoftMismatchesStayInPlace(t *testing.T) {
	t.Parallel()
	f := NewFlow()
	f.Open(guestList())
	require.NoError(t, f.Accept())

	for i := 0; i < 5; i++ {
		ok, err := f.SubmitName("nobody")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, StepName, f.Step)
		assert.Equal(t, ErrTextUnknownName, f.Error)
	}

	ok, _ := f.SubmitName("adu")
	require.True(t, ok)
	assert.Empty(t, f.Error)

	ok, err := f.SubmitDate("2020-02-15")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StepDate, f.Step)
	assert.Equal(t, ErrTextWrongDate, f.Error)
	assert.Empty(t, f.View().Message, "message must stay hidden before success")

	ok, _ = f.SubmitDate("1999-02-14")
	assert.True(t, ok)
	assert.Equal(t, "Welcome, Adu.", f.View().Greeting)
}

func TestFlow_DeclineAndCloseReset(t *testing.T) {
	t.Parallel()
	f := NewFlow()
	f.Open(guestList())
	require.NoError(t, f.Decline())
	assert.Equal(t, StepClosed, f.Step)
	assert.Empty(t, f.Entries)

	f.Open(guestList())
	require.NoError(t, f.Accept())
	_, _ = f.SubmitName("sam")
	f.Close()
	assert.Equal(t, *NewFlow(), *f)

	f.Open(nil)
	assert.Equal(t, StepIntro, f.Step)
	assert.Nil(t, f.Matched)
	assert.Empty(t, f.Name)
}

func TestFlow_WrongStep(t *testing.T) {
	t.Parallel()
	f := NewFlow()
	assert.ErrorIs(t, f.Accept(), ErrWrongStep)

	f.Open(guestList())
	_, err := f.SubmitDate("2020-02-14")
	assert.ErrorIs(t, err, ErrWrongStep)
	_, err = f.SubmitName("sam")
	assert.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, f.Accept())
	assert.ErrorIs(t, f.Decline(), ErrWrongStep)
}

func TestStores(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	for name, s := range map[string]Store{"redis": NewStore(rdb), "memory": NewStore(nil)} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			f, err := s.Load(ctx, "v1")
			require.NoError(t, err)
			assert.Equal(t, StepClosed, f.Step)

			f.Open(guestList())
			require.NoError(t, f.Accept())
			require.NoError(t, s.Save(ctx, "v1", f))

			loaded, err := s.Load(ctx, "v1")
			require.NoError(t, err)
			assert.Equal(t, StepName, loaded.Step)
			assert.Len(t, loaded.Entries, 2)

			loaded.Close()
			require.NoError(t, s.Save(ctx, "v1", loaded))
			again, _ := s.Load(ctx, "v1")
			assert.Equal(t, StepClosed, again.Step)
		})
	}
}

func TestMemoryStore_Expires(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	f := NewFlow()
	f.Open(guestList())
	require.NoError(t, s.Save(context.Background(), "v1", f))

	now = now.Add(2 * time.Minute)
	loaded, err := s.Load(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, StepClosed, loaded.Step)
}
