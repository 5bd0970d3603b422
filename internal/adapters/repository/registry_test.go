package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	repository "github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/activity"
	. "github.com/smartystreets/goconvey/convey"
)

func fixture() []activity.Activity {
	return []activity.Activity{
		{
			Name:            "Soccer Team",
			Description:     "Join the school soccer team for training and matches",
			Schedule:        "Wednesdays and Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 22,
			Participants:    []string{"lucas@mergington.edu", "mia@mergington.edu"},
		},
		{
			Name:            "Basketball Club",
			Description:     "Practice basketball skills and compete in games",
			Schedule:        "Tuesdays, 5:00 PM - 6:30 PM",
			MaxParticipants: 15,
			Participants:    []string{"liam@mergington.edu", "ava@mergington.edu"},
		},
	}
}

func TestNewMemoryRegistry(t *testing.T) {
	Convey("Given seed data", t, func() {
		Convey("When the seed is valid", func() {
			r, err := repository.NewMemoryRegistry(fixture())

			Convey("Then the registry holds every activity", func() {
				So(err, ShouldBeNil)
				So(r.Count(context.Background()), ShouldEqual, 2)
				So(r.Participants(context.Background()), ShouldEqual, 4)
				So(r.CapacityEnforced(), ShouldBeFalse)
			})
		})

		Convey("When two records share a name", func() {
			seed := append(fixture(), fixture()[0])
			_, err := repository.NewMemoryRegistry(seed)

			Convey("Then construction fails", func() {
				So(errors.Is(err, activity.ErrDuplicateActivity), ShouldBeTrue)
			})
		})

		Convey("When a record is invalid", func() {
			seed := fixture()
			seed[1].MaxParticipants = 0
			_, err := repository.NewMemoryRegistry(seed)

			Convey("Then construction fails", func() {
				So(errors.Is(err, activity.ErrInvalidActivity), ShouldBeTrue)
			})
		})

		Convey("When the caller mutates the seed afterwards", func() {
			seed := fixture()
			r, err := repository.NewMemoryRegistry(seed)
			So(err, ShouldBeNil)
			seed[0].Participants[0] = "intruder@mergington.edu"

			Convey("Then the registry is unaffected", func() {
				a, err := r.Get(context.Background(), "Soccer Team")
				So(err, ShouldBeNil)
				So(a.Participants[0], ShouldEqual, "lucas@mergington.edu")
			})
		})
	})
}

func TestMemoryRegistry_Signup(t *testing.T) {
	Convey("Given a seeded registry", t, func() {
		ctx := context.Background()
		r, err := repository.NewMemoryRegistry(fixture())
		So(err, ShouldBeNil)

		Convey("When signing up a new student", func() {
			a, err := r.Signup(ctx, "Soccer Team", "newstudent@mergington.edu")

			Convey("Then the email is appended in order", func() {
				So(err, ShouldBeNil)
				So(a.Participants, ShouldResemble, []string{
					"lucas@mergington.edu", "mia@mergington.edu", "newstudent@mergington.edu",
				})
				listed, _ := r.List(ctx).Get("Soccer Team")
				So(len(listed.Participants), ShouldEqual, 3)
			})

			Convey("And a second signup of the same email fails", func() {
				_, err := r.Signup(ctx, "Soccer Team", "newstudent@mergington.edu")
				So(errors.Is(err, activity.ErrAlreadyRegistered), ShouldBeTrue)

				listed, _ := r.List(ctx).Get("Soccer Team")
				So(len(listed.Participants), ShouldEqual, 3)
			})

			Convey("And the same email may join another activity", func() {
				_, err := r.Signup(ctx, "Basketball Club", "newstudent@mergington.edu")
				So(err, ShouldBeNil)
			})
		})

		Convey("When the activity name is unknown", func() {
			_, err := r.Signup(ctx, "Underwater Basket Weaving", "x@mergington.edu")
			So(errors.Is(err, activity.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the activity name differs in case", func() {
			_, err := r.Signup(ctx, "soccer team", "x@mergington.edu")
			So(errors.Is(err, activity.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the roster is past capacity without enforcement", func() {
			for i := 0; i < 30; i++ {
				_, err := r.Signup(ctx, "Basketball Club", fmt.Sprintf("s%d@mergington.edu", i))
				So(err, ShouldBeNil)
			}

			Convey("Then signups still succeed", func() {
				a, _ := r.Get(ctx, "Basketball Club")
				So(len(a.Participants), ShouldEqual, 32)
			})
		})
	})
}

func TestMemoryRegistry_Unregister(t *testing.T) {
	Convey("Given a seeded registry", t, func() {
		ctx := context.Background()
		r, err := repository.NewMemoryRegistry(fixture())
		So(err, ShouldBeNil)

		Convey("When unregistering an existing participant", func() {
			a, err := r.Unregister(ctx, "Soccer Team", "lucas@mergington.edu")

			Convey("Then the email is removed", func() {
				So(err, ShouldBeNil)
				So(a.Participants, ShouldResemble, []string{"mia@mergington.edu"})
			})

			Convey("And unregistering again fails", func() {
				_, err := r.Unregister(ctx, "Soccer Team", "lucas@mergington.edu")
				So(errors.Is(err, activity.ErrNotRegistered), ShouldBeTrue)
			})

			Convey("And the student can sign up again at the end of the roster", func() {
				a, err := r.Signup(ctx, "Soccer Team", "lucas@mergington.edu")
				So(err, ShouldBeNil)
				So(a.Participants, ShouldResemble, []string{"mia@mergington.edu", "lucas@mergington.edu"})
			})
		})

		Convey("When the email was never added", func() {
			_, err := r.Unregister(ctx, "Soccer Team", "ghost@mergington.edu")
			So(errors.Is(err, activity.ErrNotRegistered), ShouldBeTrue)
		})

		Convey("When the activity name is unknown", func() {
			_, err := r.Unregister(ctx, "Nonexistent", "lucas@mergington.edu")
			So(errors.Is(err, activity.ErrNotFound), ShouldBeTrue)
		})

		Convey("When signing up then unregistering", func() {
			before, _ := r.Get(ctx, "Basketball Club")
			_, err := r.Signup(ctx, "Basketball Club", "round@mergington.edu")
			So(err, ShouldBeNil)
			_, err = r.Unregister(ctx, "Basketball Club", "round@mergington.edu")
			So(err, ShouldBeNil)

			Convey("Then the roster is restored exactly", func() {
				after, _ := r.Get(ctx, "Basketball Club")
				So(after.Participants, ShouldResemble, before.Participants)
			})
		})
	})
}

func TestMemoryRegistry_List(t *testing.T) {
	Convey("Given a seeded registry", t, func() {
		ctx := context.Background()
		r, err := repository.NewMemoryRegistry(fixture())
		So(err, ShouldBeNil)

		Convey("When the caller mutates a listed activity", func() {
			c := r.List(ctx)
			a, _ := c.Get("Soccer Team")
			a.Participants[0] = "intruder@mergington.edu"

			Convey("Then registry state is unchanged", func() {
				fresh, _ := r.List(ctx).Get("Soccer Team")
				So(fresh.Participants[0], ShouldEqual, "lucas@mergington.edu")
			})
		})

		Convey("Then names come back in seed order", func() {
			So(r.List(ctx).Names(), ShouldResemble, []string{"Soccer Team", "Basketball Club"})
		})
	})
}

func TestMemoryRegistry_Capacity(t *testing.T) {
	Convey("Given a registry with capacity enforcement", t, func() {
		ctx := context.Background()
		seed := fixture()
		seed[1].MaxParticipants = 3
		r, err := repository.NewMemoryRegistry(seed, repository.WithCapacityEnforcement(true))
		So(err, ShouldBeNil)
		So(r.CapacityEnforced(), ShouldBeTrue)

		Convey("When filling the last slot", func() {
			_, err := r.Signup(ctx, "Basketball Club", "third@mergington.edu")
			So(err, ShouldBeNil)

			Convey("Then the next signup is rejected", func() {
				_, err := r.Signup(ctx, "Basketball Club", "fourth@mergington.edu")
				So(errors.Is(err, activity.ErrActivityFull), ShouldBeTrue)
			})

			Convey("And a duplicate is still reported as a duplicate", func() {
				_, err := r.Signup(ctx, "Basketball Club", "third@mergington.edu")
				So(errors.Is(err, activity.ErrAlreadyRegistered), ShouldBeTrue)
			})

			Convey("And freeing a slot lets a new student in", func() {
				_, err := r.Unregister(ctx, "Basketball Club", "liam@mergington.edu")
				So(err, ShouldBeNil)
				_, err = r.Signup(ctx, "Basketball Club", "fourth@mergington.edu")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestMemoryRegistry_Concurrency(t *testing.T) {
	Convey("Given a seeded registry", t, func() {
		ctx := context.Background()

		Convey("When many distinct students sign up at once", func() {
			r, err := repository.NewMemoryRegistry(fixture())
			So(err, ShouldBeNil)

			const n = 200
			var wg sync.WaitGroup
			var failures int64
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if _, err := r.Signup(ctx, "Soccer Team", fmt.Sprintf("c%d@mergington.edu", i)); err != nil {
						atomic.AddInt64(&failures, 1)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then no update is lost", func() {
				So(failures, ShouldEqual, 0)
				a, _ := r.Get(ctx, "Soccer Team")
				So(len(a.Participants), ShouldEqual, n+2)
			})
		})

		Convey("When the same student signs up concurrently", func() {
			r, err := repository.NewMemoryRegistry(fixture())
			So(err, ShouldBeNil)

			var wg sync.WaitGroup
			var successes int64
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := r.Signup(ctx, "Soccer Team", "race@mergington.edu"); err == nil {
						atomic.AddInt64(&successes, 1)
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one call succeeds", func() {
				So(successes, ShouldEqual, 1)
				a, _ := r.Get(ctx, "Soccer Team")
				So(len(a.Participants), ShouldEqual, 3)
			})
		})

		Convey("When students race for the last slots with enforcement on", func() {
			r, err := repository.NewMemoryRegistry(fixture(), repository.WithCapacityEnforcement(true))
			So(err, ShouldBeNil)

			var wg sync.WaitGroup
			var successes int64
			for i := 0; i < 60; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if _, err := r.Signup(ctx, "Soccer Team", fmt.Sprintf("r%d@mergington.edu", i)); err == nil {
						atomic.AddInt64(&successes, 1)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then the roster stops exactly at capacity", func() {
				So(successes, ShouldEqual, 20)
				a, _ := r.Get(ctx, "Soccer Team")
				So(len(a.Participants), ShouldEqual, 22)
			})
		})
	})
}

func TestStore(t *testing.T) {
	Convey("Given a registry used through the Store interface", t, func() {
		ctx := context.Background()
		r, err := repository.NewMemoryRegistry(fixture())
		So(err, ShouldBeNil)
		var s repository.Store = r

		Convey("Then counts follow roster mutations", func() {
			So(s.Count(ctx), ShouldEqual, 2)
			So(s.Participants(ctx), ShouldEqual, 4)

			_, err := s.Signup(ctx, "Soccer Team", "new@mergington.edu")
			So(err, ShouldBeNil)
			So(s.Participants(ctx), ShouldEqual, 5)

			_, err = s.Unregister(ctx, "Basketball Club", "liam@mergington.edu")
			So(err, ShouldBeNil)
			So(s.Participants(ctx), ShouldEqual, 4)
			So(s.Count(ctx), ShouldEqual, 2)
		})

		Convey("Then Get returns a detached copy", func() {
			a, err := s.Get(ctx, "Soccer Team")
			So(err, ShouldBeNil)
			a.Participants[0] = "changed@mergington.edu"

			again, err := s.Get(ctx, "Soccer Team")
			So(err, ShouldBeNil)
			So(again.Participants[0], ShouldEqual, "lucas@mergington.edu")
		})
	})
}
