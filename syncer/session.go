package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/utils"
)

var ErrCallThrottled = errors.New("waiter already called")

// ThrottleError tells the table how long to wait before calling again.
type ThrottleError struct {
	Remaining time.Duration
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("%v, try again in %ds", ErrCallThrottled, int(e.Remaining.Round(time.Second).Seconds()))
}

func (e *ThrottleError) Unwrap() error {
	return ErrCallThrottled
}

// CustomerSession is a table's login on a device. Logging out, by hand or
// by timeout, only drops the token: the table stays occupied until staff
// release it.
type CustomerSession struct {
	Client   *Client
	Throttle *CallThrottle
	Timeout  time.Duration
	OnExpire func()

	expiry AutoLogout
	mu     sync.Mutex
	gen    uint64
	user   *models.User
	token  string
}

func NewCustomerSession(c *Client) *CustomerSession {
	return &CustomerSession{Client: c, Throttle: NewCallThrottle(), Timeout: CustomerSessionTimeout}
}

func (s *CustomerSession) Login(ctx context.Context, table, password string) (*models.User, error) {
	res, err := s.Client.TableLogin(ctx, table, password)
	if err != nil {
		return nil, err
	}
	s.start(res)
	return res.User, nil
}

func (s *CustomerSession) LoginWithSlug(ctx context.Context, slug string) (*models.User, error) {
	res, err := s.Client.SlugLogin(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.start(res)
	return res.User, nil
}

func (s *CustomerSession) start(res *LoginResult) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.user = res.User
	s.token = res.Token
	s.mu.Unlock()

	s.expiry.Start(s.Timeout, func() { s.expire(gen) })
}

// expire ends the login numbered gen. A timer belonging to an earlier login
// finds a newer generation and does nothing.
func (s *CustomerSession) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.user == nil {
		s.mu.Unlock()
		return
	}
	s.gen++
	user, token := s.user, s.token
	s.user, s.token = nil, ""
	s.mu.Unlock()

	utils.InfoLogger.Printf("Table %s logged out after %s", user.Username, s.Timeout)
	if err := s.Client.Revoke(context.Background(), token); err != nil {
		utils.ErrorLogger.Warnf("Revoking expired token of table %s: %v", user.Username, err)
	}
	if s.OnExpire != nil {
		s.OnExpire()
	}
}

// User is the logged in table, or nil.
func (s *CustomerSession) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *CustomerSession) Logout(ctx context.Context) error {
	s.expiry.Cancel()
	s.mu.Lock()
	s.gen++
	s.user, s.token = nil, ""
	s.mu.Unlock()
	return s.Client.Logout(ctx)
}

// CallWaiter asks for a waiter unless the last successful call was less than
// the throttle window ago.
func (s *CustomerSession) CallWaiter(ctx context.Context) (*models.WaiterCall, error) {
	if left := s.Throttle.Remaining(); left > 0 {
		return nil, &ThrottleError{Remaining: left}
	}
	call, err := s.Client.CallWaiter(ctx)
	if err != nil {
		return nil, err
	}
	s.Throttle.Record()
	return call, nil
}
