package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repository "github.com/okian/podium/internal/adapters/repository"
	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// unavailableStore simulates an unreachable backing store.
type unavailableStore struct{}

func (unavailableStore) Upsert(ctx context.Context, username string, score int64) (repository.Entry, error) {
	return repository.Entry{}, repository.ErrUnavailable
}

func (unavailableStore) Rank(ctx context.Context, username string) (repository.Entry, error) {
	return repository.Entry{}, repository.ErrUnavailable
}

func (unavailableStore) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return nil, repository.ErrUnavailable
}

func (unavailableStore) Count(ctx context.Context) (int, error) {
	return 0, repository.ErrUnavailable
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithRefreshInterval(50*time.Millisecond),
			service.WithRetentionTTL(time.Hour),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Operations(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithRefreshInterval(20 * time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When submitting scores", func() {
			for _, sub := range []struct {
				username string
				score    int64
			}{
				{"alice", 150},
				{"bob", 200},
				{"carol", 150},
			} {
				_, err := svc.SubmitScore(ctx, sub.username, sub.score)
				So(err, ShouldBeNil)
			}

			Convey("Then ranks follow score desc, username asc", func() {
				entries, err := svc.TopN(ctx, 3)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 3)
				So(entries[0].Username, ShouldEqual, "bob")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Username, ShouldEqual, "alice")
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[2].Username, ShouldEqual, "carol")
				So(entries[2].Rank, ShouldEqual, 3)
			})

			Convey("And Rank answers for a single user", func() {
				entry, err := svc.Rank(ctx, "alice")
				So(err, ShouldBeNil)
				So(entry.Score, ShouldEqual, 150)
				So(entry.Rank, ShouldEqual, 2)
			})

			Convey("And an unknown user yields ErrNotFound", func() {
				_, err := svc.Rank(ctx, "ghost")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("And the metadata snapshot converges on the leader", func() {
				ok := false
				deadline := time.Now().Add(2 * time.Second)
				for time.Now().Before(deadline) {
					snap := svc.Metadata(ctx)
					if snap.TotalUsers == 3 && snap.TopUser != nil && *snap.TopUser == "bob" && *snap.TopScore == 200 {
						ok = true
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When submitting a negative score", func() {
			_, err := svc.SubmitScore(ctx, "mallory", -5)

			Convey("Then it fails with ErrInvalidScore", func() {
				So(errors.Is(err, repository.ErrInvalidScore), ShouldBeTrue)
			})
		})
	})
}

func TestService_UnavailableStore(t *testing.T) {
	Convey("Given a service over an unreachable store", t, func() {
		svc := service.New(service.WithStore(unavailableStore{}))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then operations surface ErrUnavailable to the caller", func() {
			_, err := svc.SubmitScore(ctx, "alice", 100)
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)

			_, err = svc.Rank(ctx, "alice")
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)

			_, err = svc.TopN(ctx, 10)
			So(errors.Is(err, repository.ErrUnavailable), ShouldBeTrue)
		})

		Convey("And the metadata read still serves the zero snapshot", func() {
			snap := svc.Metadata(ctx)
			So(snap, ShouldNotBeNil)
			So(snap.TotalUsers, ShouldEqual, 0)
		})
	})
}
