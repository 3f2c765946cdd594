package db

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mfreeman451/zserve/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAsyncWriterFlushesOnBatchSize(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := NewMockService(ctrl)

	var (
		mu      sync.Mutex
		written []string
	)

	mockDB.EXPECT().InsertAccessBatch(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ any, recs []*models.AccessRecord) error {
			mu.Lock()
			defer mu.Unlock()

			for _, r := range recs {
				written = append(written, r.Path)
			}

			return nil
		}).Times(2)

	w := NewAsyncWriter(mockDB, WriterConfig{BatchSize: 2, FlushInterval: time.Hour})
	w.Start()

	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		w.Record(&models.AccessRecord{Path: p})
	}

	w.Stop()

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"/a", "/b", "/c", "/d"}, written)
	assert.Zero(t, w.Dropped())
}

func TestAsyncWriterFlushesRemainderOnStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := NewMockService(ctrl)

	mockDB.EXPECT().InsertAccessBatch(gomock.Any(), gomock.Len(1)).Return(nil)

	w := NewAsyncWriter(mockDB, WriterConfig{BatchSize: 10, FlushInterval: time.Hour})
	w.Start()
	w.Record(&models.AccessRecord{Path: "/only"})
	w.Stop()

	assert.ErrorIs(t, w.Enqueue(&models.AccessRecord{}), ErrWriterClosed)
}

func TestAsyncWriterDropsWhenFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := NewMockService(ctrl)

	// Not started, so nothing drains the queue.
	w := NewAsyncWriter(mockDB, WriterConfig{QueueSize: 1})

	require.NoError(t, w.Enqueue(&models.AccessRecord{Path: "/a"}))
	assert.ErrorIs(t, w.Enqueue(&models.AccessRecord{Path: "/b"}), ErrQueueFull)

	w.Record(&models.AccessRecord{Path: "/c"})
	assert.Equal(t, uint64(1), w.Dropped())

	w.Stop()
	assert.Equal(t, uint64(2), w.Dropped())
}

func TestAsyncWriterCountsFailedBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := NewMockService(ctrl)

	mockDB.EXPECT().InsertAccessBatch(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	w := NewAsyncWriter(mockDB, WriterConfig{BatchSize: 3, FlushInterval: time.Hour})
	w.Start()

	for i := 0; i < 3; i++ {
		w.Record(&models.AccessRecord{Path: "/x"})
	}

	w.Stop()

	assert.Equal(t, uint64(3), w.Dropped())
}

func TestAsyncWriterAccountsForEveryRecordAcrossStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockDB := NewMockService(ctrl)

	var written atomic.Uint64

	mockDB.EXPECT().InsertAccessBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, recs []*models.AccessRecord) error {
			written.Add(uint64(len(recs)))

			return nil
		}).AnyTimes()

	w := NewAsyncWriter(mockDB, WriterConfig{QueueSize: 4096, BatchSize: 16, FlushInterval: time.Millisecond})
	w.Start()

	const (
		producers = 8
		perWorker = 200
	)

	var wg sync.WaitGroup

	for i := 0; i < producers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < perWorker; j++ {
				w.Record(&models.AccessRecord{Path: "/x"})
			}
		}()
	}

	time.Sleep(time.Millisecond)
	w.Stop()
	wg.Wait()

	assert.Equal(t, uint64(producers*perWorker), written.Load()+w.Dropped())
}
