package loadtest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/mergington/internal/adapters/http/api"
	service "github.com/okian/mergington/internal/app"
	"github.com/okian/mergington/internal/domain/activity"
	"github.com/okian/mergington/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(opts ...service.Option) (*httptest.Server, *service.Service) {
	ctx := context.Background()
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, nil).Register(ctx, mux)
	return httptest.NewServer(mux), svc
}

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		Activity: "Chess Club",
		Students: 40,
		Workers:  8,
		Timeout:  5 * time.Second,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a running activities service", t, func() {
		So(logger.Init(), ShouldBeNil)
		srv, svc := newTestServer()
		defer srv.Close()
		defer svc.Stop()

		Convey("When a load run completes", func() {
			stats, err := Run(context.Background(), testConfig(srv.URL))

			Convey("Then every step sees the expected status", func() {
				So(err, ShouldBeNil)
				So(stats.Signups, ShouldEqual, 40)
				So(stats.DuplicateDenied, ShouldEqual, 40)
				So(stats.Unregistrations, ShouldEqual, 40)
				So(stats.Failed, ShouldEqual, 0)
			})

			Convey("Then the roster is back to its seed", func() {
				So(stats.InitialRoster, ShouldEqual, 2)
				So(stats.FinalRoster, ShouldEqual, 2)

				catalog, err := svc.Activities(context.Background())
				So(err, ShouldBeNil)
				chess, _ := catalog.Get("Chess Club")
				So(chess.Participants, ShouldResemble, []string{"michael@mergington.edu", "daniel@mergington.edu"})
			})
		})

		Convey("When the activity does not exist", func() {
			cfg := testConfig(srv.URL)
			cfg.Activity = "Underwater Basket Weaving"
			_, err := Run(context.Background(), cfg)

			Convey("Then the run fails before any traffic", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "not in catalog")
			})
		})
	})

	Convey("Given a service enforcing capacity", t, func() {
		So(logger.Init(), ShouldBeNil)
		srv, svc := newTestServer(
			service.WithCapacityEnforcement(true),
			service.WithActivities([]activity.Activity{{
				Name:            "Tiny Club",
				Description:     "Three seats",
				Schedule:        "Mondays",
				MaxParticipants: 3,
			}}),
		)
		defer srv.Close()
		defer svc.Stop()

		Convey("When more students than seats enroll", func() {
			cfg := testConfig(srv.URL)
			cfg.Activity = "Tiny Club"
			cfg.Students = 10
			stats, err := Run(context.Background(), cfg)

			Convey("Then the overflow is reported as failures", func() {
				So(errors.Is(err, ErrUnexpectedStatus), ShouldBeTrue)
				So(stats.Signups, ShouldEqual, 3)
				So(stats.Unregistrations, ShouldEqual, 3)
				So(stats.FinalRoster, ShouldEqual, 0)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given load test configs", t, func() {
		Convey("A complete config is valid", func() {
			So(testConfig("http://localhost:8000").Validate(), ShouldBeNil)
		})

		Convey("Unusable settings are rejected", func() {
			for _, mutate := range []func(*Config){
				func(c *Config) { c.BaseURL = " " },
				func(c *Config) { c.Activity = "" },
				func(c *Config) { c.Students = 0 },
				func(c *Config) { c.Workers = -1 },
				func(c *Config) { c.Timeout = 0 },
			} {
				cfg := testConfig("http://localhost:8000")
				mutate(cfg)
				So(errors.Is(cfg.Validate(), ErrInvalidConfig), ShouldBeTrue)
			}
		})
	})
}

func TestVerifyRoster(t *testing.T) {
	Convey("Given two rosters", t, func() {
		Convey("Identical rosters verify", func() {
			So(verifyRoster([]string{"a", "b"}, []string{"a", "b"}), ShouldBeNil)
		})

		Convey("A leftover participant is a mismatch", func() {
			So(errors.Is(verifyRoster([]string{"a"}, []string{"a", "x"}), ErrRosterMismatch), ShouldBeTrue)
		})

		Convey("Reordering is a mismatch", func() {
			So(errors.Is(verifyRoster([]string{"a", "b"}, []string{"b", "a"}), ErrRosterMismatch), ShouldBeTrue)
		})
	})
}

func TestGenerateStudents(t *testing.T) {
	Convey("Given a request for generated students", t, func() {
		emails := generateStudents(100, "")

		Convey("Then every email is unique and on the school domain", func() {
			seen := make(map[string]struct{}, len(emails))
			for _, e := range emails {
				So(strings.HasSuffix(e, "@mergington.edu"), ShouldBeTrue)
				seen[e] = struct{}{}
			}
			So(len(seen), ShouldEqual, 100)
		})
	})
}
