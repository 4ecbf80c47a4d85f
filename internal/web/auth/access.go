package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Request is what access logic sees of an incoming request: the HTTP request
// and the typed, internally named parameters of the route.
type Request struct {
	HTTP   *http.Request
	Params map[string]interface{}
}

// AccessFunc decides whether a request may be served
type AccessFunc func(ctx context.Context, req *Request, claims Claims) (bool, error)

// errDecided stops the remaining branches once the result is known
var errDecided = errors.New("access decided")

// Anybody allows every request
func Anybody(context.Context, *Request, Claims) (bool, error) {
	return true, nil
}

// Nobody denies every request
func Nobody(context.Context, *Request, Claims) (bool, error) {
	return false, nil
}

// Authenticated allows requests that carry verified claims
func Authenticated(_ context.Context, _ *Request, claims Claims) (bool, error) {
	return claims != nil, nil
}

// HasRole allows requests whose "roles" claim contains the role
func HasRole(role string) AccessFunc {
	return func(_ context.Context, _ *Request, claims Claims) (bool, error) {
		switch roles := claims["roles"].(type) {
		case []interface{}:
			for _, r := range roles {
				if s, ok := r.(string); ok && s == role {
					return true, nil
				}
			}
		case []string:
			for _, r := range roles {
				if r == role {
					return true, nil
				}
			}
		case string:
			return roles == role, nil
		}
		return false, nil
	}
}

// And allows the request if every branch allows it. Branches run
// concurrently; the first denial cancels the rest.
func And(fs ...AccessFunc) AccessFunc {
	return parallel(fs, false)
}

// Or allows the request if any branch allows it. Branches run concurrently;
// the first grant cancels the rest.
func Or(fs ...AccessFunc) AccessFunc {
	return parallel(fs, true)
}

// parallel resolves to decisive as soon as one branch returns it, and to
// !decisive once all branches returned the other value.
func parallel(fs []AccessFunc, decisive bool) AccessFunc {
	return func(ctx context.Context, req *Request, claims Claims) (bool, error) {
		g, gctx := errgroup.WithContext(ctx)
		for _, f := range fs {
			f := f
			g.Go(func() error {
				ok, err := f(gctx, req, claims)
				if err != nil {
					return err
				}
				if ok == decisive {
					return errDecided
				}
				return nil
			})
		}

		err := g.Wait()
		switch {
		case err == nil:
			return !decisive, nil
		case errors.Is(err, errDecided):
			return decisive, nil
		default:
			return false, err
		}
	}
}

// AndS is like And but evaluates the branches in order and stops at the first denial
func AndS(fs ...AccessFunc) AccessFunc {
	return sequential(fs, false)
}

// OrS is like Or but evaluates the branches in order and stops at the first grant
func OrS(fs ...AccessFunc) AccessFunc {
	return sequential(fs, true)
}

func sequential(fs []AccessFunc, decisive bool) AccessFunc {
	return func(ctx context.Context, req *Request, claims Claims) (bool, error) {
		for _, f := range fs {
			ok, err := f(ctx, req, claims)
			if err != nil {
				return false, err
			}
			if ok == decisive {
				return decisive, nil
			}
		}
		return !decisive, nil
	}
}

// ParseAccess builds an AccessFunc from its configuration name:
// anybody, nobody, authenticated or role:<name>. Several names separated
// by "|" are combined with OrS.
func ParseAccess(s string) (AccessFunc, error) {
	parts := strings.Split(s, "|")
	funcs := make([]AccessFunc, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		switch {
		case name == "anybody":
			funcs = append(funcs, Anybody)
		case name == "nobody":
			funcs = append(funcs, Nobody)
		case name == "authenticated":
			funcs = append(funcs, Authenticated)
		case strings.HasPrefix(name, "role:") && len(name) > len("role:"):
			funcs = append(funcs, HasRole(strings.TrimPrefix(name, "role:")))
		default:
			return nil, fmt.Errorf("unknown access rule %q", name)
		}
	}
	if len(funcs) == 1 {
		return funcs[0], nil
	}
	return OrS(funcs...), nil
}
