package metadata_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/podium/internal/domain/metadata"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// fakeSource is a controllable metadata.Source for refresher tests.
type fakeSource struct {
	mu     sync.Mutex
	count  int
	leader string
	score  int64
	err    error
}

func (f *fakeSource) set(count int, leader string, score int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count, f.leader, f.score, f.err = count, leader, score, err
}

func (f *fakeSource) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, f.err
}

func (f *fakeSource) Leader(ctx context.Context) (string, int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", 0, false, f.err
	}
	if f.count == 0 {
		return "", 0, false, nil
	}
	return f.leader, f.score, true, nil
}

func TestCache(t *testing.T) {
	Convey("Given a fresh cache", t, func() {
		cache := metadata.NewCache()

		Convey("Then reads before the first publish see the zero snapshot", func() {
			snap := cache.Read()
			So(snap, ShouldNotBeNil)
			So(snap.TotalUsers, ShouldEqual, 0)
			So(snap.TopScore, ShouldBeNil)
			So(snap.TopUser, ShouldBeNil)
		})

		Convey("When a snapshot is published", func() {
			score := int64(200)
			user := "bob"
			cache.Publish(&metadata.Snapshot{
				TotalUsers:  3,
				TopScore:    &score,
				TopUser:     &user,
				RefreshedAt: time.Now(),
			})

			Convey("Then reads see the whole snapshot", func() {
				snap := cache.Read()
				So(snap.TotalUsers, ShouldEqual, 3)
				So(*snap.TopScore, ShouldEqual, 200)
				So(*snap.TopUser, ShouldEqual, "bob")
			})
		})

		Convey("When nil is published", func() {
			cache.Publish(nil)

			Convey("Then reads fall back to the zero snapshot", func() {
				So(cache.Read().TotalUsers, ShouldEqual, 0)
			})
		})
	})
}

func TestRefresher(t *testing.T) {
	Convey("Given a refresher over a populated source", t, func() {
		source := &fakeSource{}
		source.set(3, "bob", 200, nil)
		cache := metadata.NewCache()
		r := metadata.NewRefresher(source, cache,
			metadata.WithInterval(20*time.Millisecond),
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Convey("When started", func() {
			r.Start(ctx)
			defer r.Stop()

			Convey("Then the first snapshot is published immediately", func() {
				So(waitFor(func() bool { return cache.Read().TotalUsers == 3 }), ShouldBeTrue)
				snap := cache.Read()
				So(*snap.TopUser, ShouldEqual, "bob")
				So(*snap.TopScore, ShouldEqual, 200)
				So(snap.RefreshedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And subsequent ticks pick up source changes", func() {
				So(waitFor(func() bool { return cache.Read().TotalUsers == 3 }), ShouldBeTrue)
				source.set(5, "dora", 900, nil)
				So(waitFor(func() bool { return cache.Read().TotalUsers == 5 }), ShouldBeTrue)
				So(*cache.Read().TopUser, ShouldEqual, "dora")
			})
		})
	})

	Convey("Given a refresher over an empty source", t, func() {
		source := &fakeSource{}
		cache := metadata.NewCache()
		r := metadata.NewRefresher(source, cache,
			metadata.WithInterval(20*time.Millisecond),
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		r.Start(ctx)
		defer r.Stop()

		Convey("Then it publishes a zeroed snapshot with absent leading fields", func() {
			So(waitFor(func() bool { return !cache.Read().RefreshedAt.IsZero() }), ShouldBeTrue)
			snap := cache.Read()
			So(snap.TotalUsers, ShouldEqual, 0)
			So(snap.TopScore, ShouldBeNil)
			So(snap.TopUser, ShouldBeNil)
		})
	})

	Convey("Given a source that fails and then recovers", t, func() {
		source := &fakeSource{}
		source.set(2, "alice", 100, nil)
		cache := metadata.NewCache()
		r := metadata.NewRefresher(source, cache,
			metadata.WithInterval(20*time.Millisecond),
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		r.Start(ctx)
		defer r.Stop()

		So(waitFor(func() bool { return cache.Read().TotalUsers == 2 }), ShouldBeTrue)

		Convey("When ticks start failing", func() {
			source.set(0, "", 0, errors.New("store unreachable"))
			time.Sleep(80 * time.Millisecond)

			Convey("Then the previous snapshot remains visible", func() {
				snap := cache.Read()
				So(snap.TotalUsers, ShouldEqual, 2)
				So(*snap.TopUser, ShouldEqual, "alice")
			})

			Convey("And the loop keeps running after recovery", func() {
				source.set(4, "carol", 300, nil)
				So(waitFor(func() bool { return cache.Read().TotalUsers == 4 }), ShouldBeTrue)
			})
		})
	})

	Convey("Given a started refresher", t, func() {
		source := &fakeSource{}
		cache := metadata.NewCache()
		r := metadata.NewRefresher(source, cache,
			metadata.WithInterval(time.Hour),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		r.Start(ctx)

		Convey("When stopped", func() {
			done := make(chan struct{})
			go func() {
				r.Stop()
				close(done)
			}()

			Convey("Then it exits promptly despite the long interval", func() {
				select {
				case <-done:
				case <-time.After(2 * time.Second):
					So("refresher did not stop in time", ShouldBeEmpty)
				}
			})

			Convey("And stopping again is safe", func() {
				<-done
				So(r.Stop, ShouldNotPanic)
			})
		})
	})
}

// waitFor polls cond for up to two seconds.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
