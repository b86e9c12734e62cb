package shellsvc

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/router"
	"github.com/mkrupp/disastermap/internal/svc/disastersvc"
)

const msgInvalidQuery = "Invalid query"

// page builds the view model of an admitted location.
//
//nolint:cyclop,funlen
func (ht *HTTPTransport) page(
	ctx context.Context,
	loc router.Location,
	query url.Values,
	session domain.Session,
) (any, domain.Result) {
	ok := domain.Succeeded("")

	switch loc.Route {
	case "home":
		return HomeView{Title: "Disaster Map", Links: homeLinks(ht.table, session)}, ok
	case "map":
		res := ht.disasters.List(ctx, disastersvc.Query{}) //nolint:exhaustruct

		return MapView{Markers: markers(res.Disasters)}, res.Result
	case "login":
		//nolint:exhaustruct
		return FormView{Action: "/session/login", Fields: []string{"email", "password"}}, ok
	case "register":
		//nolint:exhaustruct
		return FormView{
			Action: "/session/register",
			Fields: []string{"name", "email", "password"},
			Rules:  passwordRules,
		}, ok
	case "reset-password":
		//nolint:exhaustruct
		return FormView{
			Action: "/session/reset-password",
			Fields: []string{"email", "code", "password", "confirmPassword"},
			Rules:  passwordRules,
		}, ok
	case "verify-email":
		res := ht.verify(ctx, loc.Params["code"])

		return VerifyView{Result: res, Next: Link{Label: "Log in", Path: router.LoginPath}}, res
	case "disasters":
		q, err := parseQuery(query)
		if err != nil {
			return nil, domain.Failed(err, msgInvalidQuery)
		}

		res := ht.disasters.List(ctx, q)

		return ListView{
			Query:     q,
			Disasters: res.Disasters,
			Total:     res.Total,
			CanEdit:   ht.auth.IsAdmin() || ht.auth.IsReporter(),
		}, res.Result
	case "disaster":
		res := ht.disasters.Get(ctx, domain.ID(loc.Params["id"]))
		if !res.Success {
			return notFound(res.Result), res.Result
		}

		return DetailView{
			Disaster: *res.Disaster,
			CanEdit:  ht.auth.IsAdmin() || ht.auth.IsReporter(),
			Back:     backToList,
		}, res.Result
	case "dashboard":
		res := ht.disasters.List(ctx, disastersvc.Query{SortBy: disastersvc.SortCreated, Descending: true}) //nolint:exhaustruct

		recent := res.Disasters
		if len(recent) > ht.cfg.RecentCount {
			recent = recent[:ht.cfg.RecentCount]
		}

		return DashboardView{Summary: disastersvc.Summarize(res.Disasters), Recent: recent}, res.Result
	case "reports":
		res := ht.disasters.List(ctx, disastersvc.Query{}) //nolint:exhaustruct

		return ReportsView{Summary: disastersvc.Summarize(res.Disasters)}, res.Result
	case "account":
		return AccountView{
			User:       session.User,
			IsAdmin:    session.User.IsAdmin(),
			IsReporter: session.User.IsReporter(),
		}, ok
	case "disaster-new":
		//nolint:exhaustruct
		return FormView{
			Action:  "/disasters/new",
			Fields:  disasterFields,
			Values:  &domain.DisasterInput{Status: domain.StatusReported, Severity: domain.SeverityMedium},
			Options: disasterOptions(),
		}, ok
	case routeDisasterEdit:
		id := loc.Params["id"]

		res := ht.disasters.Get(ctx, domain.ID(id))
		if !res.Success {
			return notFound(res.Result), res.Result
		}

		values := domain.InputFromRecord(*res.Disaster)

		//nolint:exhaustruct
		return FormView{
			Action:  "/disasters/" + url.PathEscape(id) + "/edit",
			Fields:  disasterFields[:len(disasterFields)-1],
			Values:  &values,
			Options: disasterOptions(),
		}, ok
	case "devices":
		return DevicesView{Devices: []string{}}, ok
	default:
		return nil, ok
	}
}

// verify follows an email verification link once per code. Reloading the
// page answers the first outcome instead of verifying again.
func (ht *HTTPTransport) verify(ctx context.Context, code string) domain.Result {
	ht.verifyMu.Lock()
	defer ht.verifyMu.Unlock()

	if res, ok := ht.verified[code]; ok {
		return res
	}

	res := ht.auth.VerifyEmail(ctx, code)
	if res.Success {
		ht.verified[code] = res
	}

	return res
}

func notFound(res domain.Result) any {
	if !errors.Is(res.Err, domain.ErrNotFound) {
		return nil
	}

	return NotFoundView{Message: res.Message, Back: backToList}
}

// parseQuery reads the list query of the disasters page:
// ?search=&type=&status=&severity=&sort=&desc=.
func parseQuery(values url.Values) (disastersvc.Query, error) {
	sortBy, err := disastersvc.ParseSortKey(values.Get("sort"))
	if err != nil {
		return disastersvc.Query{}, err //nolint:exhaustruct
	}

	var desc bool

	if raw := values.Get("desc"); raw != "" {
		desc, err = strconv.ParseBool(raw)
		if err != nil {
			return disastersvc.Query{}, domain.NewInputError("desc", "must be true or false") //nolint:exhaustruct
		}
	}

	return disastersvc.Query{
		Search:     strings.TrimSpace(values.Get("search")),
		Type:       values.Get("type"),
		Status:     domain.Status(values.Get("status")),
		Severity:   domain.Severity(values.Get("severity")),
		SortBy:     sortBy,
		Descending: desc,
	}, nil
}
