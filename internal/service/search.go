package service

import (
	"context"
	"fmt"
	"strings"

	"success-mcp/internal/model"

	"golang.org/x/sync/errgroup"
)

// Resource ids returned by Search and accepted by Fetch have the form
// <type>:<id>.
var resourceTypes = []string{
	"team", "user", "todo", "rock", "meeting", "issue", "headline",
	"milestone", "measurable", "meetingInfo", "vision",
}

// searchable lists the resource types that have a name to match on.
var searchable = []string{
	"team", "user", "todo", "rock", "issue", "headline", "milestone", "measurable", "meetingInfo",
}

type titled struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (t titled) title() string {
	if t.Name != "" {
		return t.Name
	}
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

var searchEntities = map[string]entity{
	"team":        teamEntity,
	"user":        userEntity,
	"todo":        todoEntity,
	"rock":        rockEntity,
	"issue":       issueEntity,
	"headline":    headlineEntity,
	"milestone":   milestoneEntity,
	"measurable":  dataFieldEntity,
	"meetingInfo": meetingInfoEntity,
}

type SearchArgs struct {
	Query string   `json:"query"`
	Types []string `json:"types"`
	First int      `json:"first"`
}

const defaultSearchFirst = 10

// Search matches query against names across resource types in parallel.
// A type that fails is reported through a *PartialError alongside the
// results of the others.
func (s *Service) Search(ctx context.Context, a SearchArgs) ([]model.SearchResult, error) {
	q := strings.TrimSpace(a.Query)
	if q == "" {
		return nil, invalid("query is required")
	}
	types := searchable
	if len(a.Types) > 0 {
		types = nil
		for _, t := range uniq(a.Types) {
			if _, ok := searchEntities[t]; !ok {
				return nil, invalid("Invalid type %q. Must be one of: %s", t, strings.Join(searchable, ", "))
			}
			types = append(types, t)
		}
	}
	first := a.First
	if first <= 0 {
		first = defaultSearchFirst
	}

	results := make([][]model.SearchResult, len(types))
	errs := make([]error, len(types))
	var g errgroup.Group
	for i, typ := range types {
		g.Go(func() error {
			results[i], errs[i] = s.searchType(ctx, typ, q, first)
			return nil
		})
	}
	_ = g.Wait()

	out := []model.SearchResult{}
	pe := &PartialError{}
	for i, typ := range types {
		if errs[i] != nil {
			pe.fail("search "+typ, errs[i])
			continue
		}
		pe.ok("search " + typ)
		out = append(out, results[i]...)
	}
	if len(pe.Succeeded) == 0 {
		return nil, errs[0]
	}
	return out, pe.err()
}

func (s *Service) searchType(ctx context.Context, typ, q string, first int) ([]model.SearchResult, error) {
	e := searchEntities[typ]
	f := Filter{}.Eq("stateId", "ACTIVE")
	if typ == "user" {
		f.Or(Filter{}.Like("firstName", q), Filter{}.Like("lastName", q), Filter{}.Like("email", q))
	} else {
		f.Like("name", q)
	}
	op := "Search" + e.pluralType()
	c, err := list[titled](ctx, s, e, op, f, Page{First: first})
	if err != nil {
		return nil, err
	}
	out := make([]model.SearchResult, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		out = append(out, model.SearchResult{ID: typ + ":" + n.ID, Type: typ, Title: n.title()})
	}
	return out, nil
}

type fetcher func(ctx context.Context, s *Service, id string) (title string, data any, found bool, err error)

var fetchers = map[string]fetcher{
	"team": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		t, ok, err := byID[model.Team](ctx, s, teamEntity, id)
		return t.Name, t, ok, err
	},
	"user": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		u, ok, err := byID[userNode](ctx, s, userEntity, id)
		return u.name(), u.shape(), ok, err
	},
	"todo": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		t, ok, err := byID[todoNode](ctx, s, todoEntity, id)
		return t.Name, t.shape(s.now()), ok, err
	},
	"rock": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		r, ok, err := byID[rockNode](ctx, s, rockEntity, id)
		if !ok || err != nil {
			return "", nil, ok, err
		}
		teams, err := s.activeTeams(ctx, rockTeams, []string{r.ID})
		return r.Name, r.shape(teams[r.ID]), true, err
	},
	"meeting": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		m, ok, err := byID[meetingNode](ctx, s, meetingEntity, id)
		if !ok || err != nil {
			return "", nil, ok, err
		}
		shaped, err := s.decorateMeetings(ctx, []meetingNode{m})
		if err != nil {
			return "", nil, true, err
		}
		title := shaped[0].Name
		if title == "" {
			title = "Meeting"
		}
		return title + " " + shaped[0].Date, shaped[0], true, nil
	},
	"issue": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		n, ok, err := byID[issueNode](ctx, s, issueEntity, id)
		return n.Name, n.shape(), ok, err
	},
	"headline": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		n, ok, err := byID[headlineNode](ctx, s, headlineEntity, id)
		return n.Name, n.shape(), ok, err
	},
	"milestone": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		n, ok, err := byID[milestoneNode](ctx, s, milestoneEntity, id)
		return n.Name, n.shape(), ok, err
	},
	"measurable": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		n, ok, err := byID[dataFieldNode](ctx, s, dataFieldEntity, id)
		if !ok || err != nil {
			return "", nil, ok, err
		}
		teams, err := s.activeTeams(ctx, dataFieldTeams, []string{n.ID})
		return n.Name, n.shape(teams[n.ID]), true, err
	},
	"meetingInfo": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		n, ok, err := byID[meetingInfoNode](ctx, s, meetingInfoEntity, id)
		return n.Name, n.shape(), ok, err
	},
	"vision": func(ctx context.Context, s *Service, id string) (string, any, bool, error) {
		v, ok, err := byID[visionNode](ctx, s, visionEntity, id)
		if !ok || err != nil {
			return "", nil, ok, err
		}
		vto, err := s.vision(ctx, v)
		return "Vision", vto, true, err
	},
}

// ParseResourceID splits a <type>:<id> reference.
func ParseResourceID(ref string) (typ, id string, err error) {
	typ, id, ok := strings.Cut(strings.TrimSpace(ref), ":")
	if ok && id != "" {
		if _, known := fetchers[typ]; known {
			return typ, id, nil
		}
	}
	return "", "", invalid("Invalid id %q. Expected <type>:<id> with type one of: %s", ref, strings.Join(resourceTypes, ", "))
}

// Fetch loads one resource by its typed id. Only the named type is queried.
func (s *Service) Fetch(ctx context.Context, ref string) (model.FetchResult, error) {
	typ, id, err := ParseResourceID(ref)
	if err != nil {
		return model.FetchResult{}, err
	}
	title, data, found, err := fetchers[typ](ctx, s, id)
	if err != nil {
		return model.FetchResult{}, err
	}
	if !found {
		return model.FetchResult{}, fmt.Errorf("%s %q not found", typ, id)
	}
	return model.FetchResult{ID: typ + ":" + id, Type: typ, Title: title, Data: data}, nil
}
