package photos

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/opad/app/models"
	"github.com/ManuelReschke/opad/internal/pkg/blobstore"
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/monthview"
	"github.com/ManuelReschke/opad/internal/pkg/testutil"
	"github.com/ManuelReschke/opad/internal/pkg/upload"
)

var leapDay = calendar.NewDate(2024, time.February, 29)

type fakeRecords struct {
	mu      sync.Mutex
	photos  map[uint]map[calendar.Date]*models.Photo
	raw     []models.Photo
	listErr error
	getErr  error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{photos: map[uint]map[calendar.Date]*models.Photo{}}
}

func (f *fakeRecords) add(userID uint, d calendar.Date, url string) {
	p := &models.Photo{UserID: userID, URL: url, ObjectKey: blobstore.ObjectKey(userID, d)}
	p.SetDate(d)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.photos[userID] == nil {
		f.photos[userID] = map[calendar.Date]*models.Photo{}
	}
	f.photos[userID][d] = p
}

func (f *fakeRecords) list(userID uint) []models.Photo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.Photo(nil), f.raw...)
	for _, p := range f.photos[userID] {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

func (f *fakeRecords) ListDays(_ context.Context, userID uint) ([]models.Photo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list(userID), nil
}

func (f *fakeRecords) ListByUser(_ context.Context, userID uint) ([]models.Photo, error) {
	return f.list(userID), nil
}

func (f *fakeRecords) GetByDay(_ context.Context, userID uint, day calendar.Date) (*models.Photo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.photos[userID][day]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRecords) Upsert(_ context.Context, photo *models.Photo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.photos[photo.UserID] == nil {
		f.photos[photo.UserID] = map[calendar.Date]*models.Photo{}
	}
	cp := *photo
	f.photos[photo.UserID][photo.Date()] = &cp
	return nil
}

func (f *fakeRecords) DeleteByUser(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.photos[userID]))
	delete(f.photos, userID)
	return n, nil
}

func (f *fakeRecords) CountByUser(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.photos[userID])), nil
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

type fakeQueue struct {
	mu   sync.Mutex
	days []calendar.Date
}

func (q *fakeQueue) EnqueueThumbnail(_ context.Context, _ uint, date calendar.Date) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.days = append(q.days, date)
	return nil
}

// noURLStore hides public URLs like a private bucket does.
type noURLStore struct {
	blobstore.Store
}

func (noURLStore) URL(string) string { return "" }

type fixture struct {
	svc     *Service
	records *fakeRecords
	cache   *fakeCache
	queue   *fakeQueue
	blobs   *blobstore.LocalStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs, err := blobstore.NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	f := &fixture{
		records: newFakeRecords(),
		cache:   newFakeCache(),
		queue:   &fakeQueue{},
		blobs:   blobs,
	}
	f.svc = NewService(f.records, blobs, f.cache, f.queue, Config{
		Location: time.UTC,
		BaseURL:  "https://opad.example/",
	})
	f.svc.now = func() time.Time { return time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestStreak(t *testing.T) {
	f := newFixture(t)
	for _, off := range []int{0, -1, -2, -5} {
		f.records.add(1, leapDay.AddDays(off), "u")
	}
	// legacy row without a DATE, only the display key
	f.records.raw = []models.Photo{{UserID: 1, DayKey: "02.20.24"}, {UserID: 1, DayKey: "garbage"}}

	sum, err := f.svc.Streak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Current)
	assert.Equal(t, 3, sum.Longest)
	assert.Equal(t, 5, sum.Total)
	assert.True(t, sum.TodayDone)
}

func TestStreak_ServedFromCache(t *testing.T) {
	f := newFixture(t)
	f.records.add(1, leapDay, "u")

	first, err := f.svc.Streak(context.Background(), 1)
	require.NoError(t, err)

	f.records.listErr = errors.New("db down")
	second, err := f.svc.Streak(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStreak_ListFailure(t *testing.T) {
	f := newFixture(t)
	f.records.listErr = errors.New("db down")

	_, err := f.svc.Streak(context.Background(), 1)
	assert.Error(t, err)
}

func TestLookupPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.records.add(1, leapDay, "https://cdn/x.png")

	url, found, err := f.svc.LookupPhoto(ctx, 1, leapDay)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://cdn/x.png", url)
	assert.Equal(t, "https://cdn/x.png", f.cache.data[photoCacheKey(1, leapDay)])

	_, found, err = f.svc.LookupPhoto(ctx, 1, leapDay.AddDays(-1))
	require.NoError(t, err)
	assert.False(t, found)

	// the negative answer is cached too
	f.records.getErr = errors.New("db down")
	_, found, err = f.svc.LookupPhoto(ctx, 1, leapDay.AddDays(-1))
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = f.svc.LookupPhoto(ctx, 1, leapDay.AddDays(-2))
	assert.Error(t, err)
}

func TestMonth(t *testing.T) {
	f := newFixture(t)
	f.records.add(1, calendar.NewDate(2024, time.February, 1), "https://cdn/1.png")
	f.records.add(1, leapDay, "https://cdn/29.png")
	f.records.add(1, calendar.NewDate(2024, time.February, 10), "")

	view := f.svc.Month(context.Background(), 1, calendar.YearMonth{Year: 2024, Month: time.February})
	assert.Equal(t, 6, view.RowCount)

	byDay := map[int]monthview.Cell{}
	for _, c := range view.Cells {
		if c.Day > 0 {
			byDay[c.Day] = c
		}
	}
	require.Len(t, byDay, 29)
	assert.Equal(t, monthview.StatePhoto, byDay[1].State)
	assert.Equal(t, "https://cdn/1.png", byDay[1].URL)
	assert.Equal(t, monthview.StateMissing, byDay[2].State)
	assert.Equal(t, monthview.MissingMissed, byDay[2].Missing)
	assert.Equal(t, monthview.StateMissing, byDay[10].State)
	assert.Equal(t, monthview.StatePhoto, byDay[29].State)

	march := f.svc.Month(context.Background(), 1, calendar.YearMonth{Year: 2024, Month: time.March})
	for _, c := range march.Cells {
		if c.Day > 0 {
			assert.Equal(t, monthview.StateFuture, c.State)
		}
	}
}

func TestMonths(t *testing.T) {
	f := newFixture(t)

	user := &models.User{CreatedAt: time.Date(2023, time.November, 15, 8, 0, 0, 0, time.UTC)}
	months := f.svc.Months(user)
	require.Len(t, months, 4)
	assert.Equal(t, "2023-11", months[0].String())
	assert.Equal(t, "2024-02", months[3].String())

	assert.Equal(t, []calendar.YearMonth{{Year: 2024, Month: time.February}}, f.svc.Months(&models.User{}))
}

func TestUpload_Today(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.cache.data[photoCacheKey(3, leapDay)] = ""

	photo, err := f.svc.Upload(ctx, UploadRequest{UserID: 3, Date: leapDay, Data: testutil.PNG(40, 30)})
	require.NoError(t, err)

	assert.Equal(t, "/uploads/Users/3/DailyPictures/02.29.24.png", photo.URL)
	assert.Equal(t, "02.29.24", photo.DayKey)
	assert.Equal(t, 40, photo.Width)
	assert.Equal(t, 30, photo.Height)

	stored, err := f.records.GetByDay(ctx, 3, leapDay)
	require.NoError(t, err)
	assert.Equal(t, photo.URL, stored.URL)

	ok, err := f.blobs.Exists(ctx, photo.ObjectKey)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []calendar.Date{leapDay}, f.queue.days)
	assert.Contains(t, f.cache.deleted, photoCacheKey(3, leapDay))
	assert.Contains(t, f.cache.deleted, streakCacheKey(3, leapDay))

	url, found, err := f.svc.LookupPhoto(ctx, 3, leapDay)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, photo.URL, url)
}

func TestUpload_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  UploadRequest
		err  error
	}{
		{"future day", UploadRequest{UserID: 1, Date: leapDay.AddDays(1), Data: testutil.PNG(4, 4)}, ErrFutureDate},
		{"empty", UploadRequest{UserID: 1, Date: leapDay}, upload.ErrEmpty},
		{"not an image", UploadRequest{UserID: 1, Date: leapDay, Data: []byte("hello world")}, upload.ErrUnsupportedType},
		{"back-fill without exif", UploadRequest{UserID: 1, Date: leapDay.AddDays(-9), Data: testutil.JPEG(8, 8), VerifyCaptureDate: true}, ErrNoCaptureDate},
		{"back-fill other day", UploadRequest{UserID: 1, Date: leapDay.AddDays(-9), Data: testutil.JPEGWithDateTime(8, 8, "2024:02:21 09:00:00"), VerifyCaptureDate: true}, ErrCaptureDateMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Empty(t, f.queue.days)
}

func TestUpload_TooLarge(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.MaxBytes = 10

	_, err := f.svc.Upload(context.Background(), UploadRequest{UserID: 1, Date: leapDay, Data: testutil.PNG(16, 16)})
	assert.ErrorIs(t, err, upload.ErrTooLarge)
}

func TestUpload_BackFillMatchingDay(t *testing.T) {
	f := newFixture(t)
	day := calendar.NewDate(2024, time.February, 20)

	photo, err := f.svc.Upload(context.Background(), UploadRequest{
		UserID:            1,
		Date:              day,
		Data:              testutil.JPEGWithDateTime(16, 8, "2024:02:20 18:30:00"),
		Filename:          "IMG_0001.jpg",
		VerifyCaptureDate: true,
	})
	require.NoError(t, err)
	require.NotNil(t, photo.TakenAt)
	assert.Equal(t, day, calendar.DateOf(*photo.TakenAt))
	assert.Equal(t, "image/png", photo.ContentType)
}

func TestUpload_PrivateStoreFallsBackToImageRoute(t *testing.T) {
	f := newFixture(t)
	f.svc.blobs = noURLStore{Store: f.blobs}

	photo, err := f.svc.Upload(context.Background(), UploadRequest{UserID: 1, Date: leapDay, Data: testutil.PNG(4, 4)})
	require.NoError(t, err)
	assert.Equal(t, "https://opad.example/api/v1/photos/2024-02-29/image", photo.URL)
}

func TestImageURL(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.ImageURL(ctx, 1, leapDay)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Upload(ctx, UploadRequest{UserID: 1, Date: leapDay, Data: testutil.PNG(4, 4)})
	require.NoError(t, err)

	url, err := f.svc.ImageURL(ctx, 1, leapDay)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/Users/1/DailyPictures/02.29.24.png", url)
}

func TestDeleteAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, off := range []int{0, -1, -2} {
		_, err := f.svc.Upload(ctx, UploadRequest{UserID: 5, Date: leapDay.AddDays(off), Data: testutil.PNG(4, 4)})
		require.NoError(t, err)
	}
	_, err := f.svc.Upload(ctx, UploadRequest{UserID: 6, Date: leapDay, Data: testutil.PNG(4, 4)})
	require.NoError(t, err)

	n, err := f.svc.DeleteAll(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ok, err := f.blobs.Exists(ctx, blobstore.ObjectKey(5, leapDay))
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.blobs.Exists(ctx, blobstore.ObjectKey(6, leapDay))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.Get(ctx, 5, leapDay)
	assert.ErrorIs(t, err, ErrNotFound)
}
