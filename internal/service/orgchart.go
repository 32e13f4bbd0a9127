package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"

	"success-mcp/internal/model"

	"golang.org/x/sync/errgroup"
)

var ErrOrgChartNotFound = errors.New("no accountability chart found")

type orgChartNode struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"isPrimary"`
	CreatedAt string `json:"createdAt"`
}

type seatNode struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OrgChartID string `json:"orgChartId"`
	ParentID   string `json:"parentId"`
	Holders    string `json:"holders"`
	Order      int    `json:"order"`
}

func (n seatNode) holderIDs() []string {
	var ids []string
	for _, id := range strings.Split(n.Holders, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

type roleNode struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Desc           string `json:"desc"`
	OrgChartSeatID string `json:"orgChartSeatId"`
}

// GetAccountabilityChart loads the primary org chart (or the oldest active
// one) and rebuilds its seat tree with holders and roles attached.
func (s *Service) GetAccountabilityChart(ctx context.Context) (model.Chart, error) {
	charts, err := list[orgChartNode](ctx, s, orgChartEntity, "", Filter{}.Eq("stateId", "ACTIVE"), Page{}, "CREATED_AT_ASC")
	if err != nil {
		return model.Chart{}, err
	}
	if len(charts.Nodes) == 0 {
		return model.Chart{}, ErrOrgChartNotFound
	}
	chart := charts.Nodes[0]
	for _, c := range charts.Nodes {
		if c.IsPrimary {
			chart = c
			break
		}
	}

	sf := Filter{}.Eq("orgChartId", chart.ID).Eq("stateId", "ACTIVE")
	seats, err := listAll[seatNode](ctx, s, orgChartSeatEntity, "", sf, "ORDER_ASC", "PRIMARY_KEY_ASC")
	if err != nil {
		return model.Chart{}, err
	}
	seatIDs := make([]string, 0, len(seats))
	var holderIDs []string
	for _, n := range seats {
		seatIDs = append(seatIDs, n.ID)
		holderIDs = append(holderIDs, n.holderIDs()...)
	}

	var (
		roles map[string][]model.Role
		users map[string]userNode
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		roles, err = s.seatRoles(gctx, seatIDs)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.usersByID(gctx, holderIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Chart{}, err
	}

	flat := make([]*model.Seat, 0, len(seats))
	for _, n := range seats {
		seat := &model.Seat{
			ID: n.ID, Name: n.Name, ParentID: n.ParentID, Order: n.Order,
			Holders: []model.Holder{}, Roles: nonNil(roles[n.ID]),
		}
		for _, id := range n.holderIDs() {
			h := model.Holder{ID: id}
			if u, ok := users[id]; ok {
				h.Name, h.Email = u.name(), u.Email
			}
			seat.Holders = append(seat.Holders, h)
		}
		flat = append(flat, seat)
	}
	return model.Chart{ID: chart.ID, Name: chart.Name, SeatCount: len(flat), Roots: buildTree(flat)}, nil
}

// seatRoles loads roles for seats in batches and dedupes them per seat.
func (s *Service) seatRoles(ctx context.Context, seatIDs []string) (map[string][]model.Role, error) {
	out := map[string][]model.Role{}
	seen := map[string]bool{}
	for _, batch := range chunk(uniq(seatIDs), batchSize) {
		f := Filter{}.In("orgChartSeatId", batch).Eq("stateId", "ACTIVE")
		rows, err := listAll[roleNode](ctx, s, roleEntity, "", f)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			name := strings.TrimSpace(r.Name)
			if !meaningfulRole(name) {
				continue
			}
			desc := strings.TrimSpace(r.Desc)
			key := r.OrgChartSeatID + "\x00" + strings.ToLower(name) + "\x00" + strings.ToLower(desc)
			if seen[key] {
				continue
			}
			seen[key] = true
			out[r.OrgChartSeatID] = append(out[r.OrgChartSeatID], model.Role{Name: name, Desc: desc})
		}
	}
	return out, nil
}

// meaningfulRole drops placeholder names: fewer than 3 characters or a bare
// number such as "12" or "1.5".
func meaningfulRole(name string) bool {
	if len([]rune(name)) < 3 {
		return false
	}
	return strings.TrimFunc(name, numeric) != ""
}

func numeric(r rune) bool {
	return unicode.IsDigit(r) || strings.ContainsRune(".,+-", r)
}

// buildTree links seats by ParentID and assigns levels. Seats whose parent
// is missing become roots, as does the first seat of any cycle.
func buildTree(seats []*model.Seat) []*model.Seat {
	byID := make(map[string]*model.Seat, len(seats))
	for _, s := range seats {
		byID[s.ID] = s
	}
	children := map[string][]*model.Seat{}
	var roots []*model.Seat
	for _, s := range seats {
		if _, ok := byID[s.ParentID]; s.ParentID == "" || s.ParentID == s.ID || !ok {
			roots = append(roots, s)
			continue
		}
		children[s.ParentID] = append(children[s.ParentID], s)
	}

	visited := map[string]bool{}
	var walk func(s *model.Seat, level int)
	walk = func(s *model.Seat, level int) {
		visited[s.ID] = true
		s.Level = level
		kids := children[s.ID]
		sortSeats(kids)
		s.Children = s.Children[:0]
		for _, k := range kids {
			if visited[k.ID] {
				continue
			}
			s.Children = append(s.Children, k)
			walk(k, level+1)
		}
	}
	sortSeats(roots)
	for _, r := range roots {
		walk(r, 0)
	}
	// Whatever is left hangs off a cycle.
	for _, s := range seats {
		if !visited[s.ID] {
			roots = append(roots, s)
			walk(s, 0)
		}
	}
	return roots
}

func sortSeats(s []*model.Seat) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Order != s[j].Order {
			return s[i].Order < s[j].Order
		}
		return s[i].Name < s[j].Name
	})
}
