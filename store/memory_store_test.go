package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoyanh/receipt-scanner/dto"
)

func TestCreateAssignsIncreasingIDs(t *testing.T) {
	s := NewReceiptStore()

	first := s.Create(dto.Receipt{OCRText: "first"})
	second := s.Create(dto.Receipt{OCRText: "second"})

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.False(t, first.ProcessedAt.IsZero())
	assert.False(t, second.ProcessedAt.Before(first.ProcessedAt))
}

func TestCreateConcurrentIDsUnique(t *testing.T) {
	s := NewReceiptStore()

	const n = 100
	var wg sync.WaitGroup
	ids := make(chan int, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- s.Create(dto.Receipt{OCRText: "x"}).ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, s.Len())
}

func TestGet(t *testing.T) {
	s := NewReceiptStore()
	created := s.Create(dto.Receipt{OCRText: "bread and milk", Language: "en"})

	got, ok := s.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "bread and milk", got.OCRText)
	assert.Equal(t, "en", got.Language)

	_, ok = s.Get(999)
	assert.False(t, ok)
}

func TestListInsertionOrder(t *testing.T) {
	s := NewReceiptStore()
	s.Create(dto.Receipt{OCRText: "a"})
	s.Create(dto.Receipt{OCRText: "b"})
	s.Create(dto.Receipt{OCRText: "c"})

	all := s.List()
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].OCRText)
	assert.Equal(t, "b", all[1].OCRText)
	assert.Equal(t, "c", all[2].OCRText)
}
