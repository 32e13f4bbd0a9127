package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLeadershipVTO(t *testing.T) {
	s, fake := newService(t)
	fake.Nodes("LeadershipVision", "visions", map[string]any{"id": "v1", "teamId": "lead", "isLeadership": true})
	fake.Nodes("VisionCoreValues", "visionCoreValues",
		map[string]any{"id": "cv1", "name": "Candor", "desc": "Say the hard thing", "position": 1},
		map[string]any{"id": "cv2", "name": "Craft", "position": 2},
	)
	fake.Nodes("VisionCoreFocusTypes", "visionCoreFocusTypes",
		map[string]any{"id": "cf1", "name": "Help teams run better", "type": "PURPOSE"},
	)
	fake.Nodes("VisionThreeYearGoals", "visionThreeYearGoals",
		map[string]any{"id": "g1", "name": "1,000 customers", "futureDate": "2027-12-31"},
	)

	vto, err := s.GetLeadershipVTO(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1", vto.VisionID)
	assert.Equal(t, map[string]int{"coreValues": 2, "coreFocus": 1, "threeYearGoals": 1, "marketStrategies": 0}, vto.Counts)
	assert.NotNil(t, vto.MarketStrategies)

	for _, op := range []string{"VisionCoreValues", "VisionCoreFocusTypes", "VisionThreeYearGoals", "VisionMarketStrategies"} {
		calls := fake.CallsTo(op)
		require.Len(t, calls, 1, op)
		assert.Equal(t, map[string]any{"equalTo": "v1"}, clause(t, calls[0], "visionId"))
	}

	md := RenderVTO(vto)
	assert.Contains(t, md, "- **Candor**: Say the hard thing")
	assert.Contains(t, md, "- **Help teams run better (purpose)**")
	assert.Contains(t, md, "- **1,000 customers (by 2027-12-31)**")
	assert.Contains(t, md, "2 core values, 1 focus items, 1 goals, 0 strategies")
}

func TestGetLeadershipVTONotFound(t *testing.T) {
	s, fake := newService(t)
	_, err := s.GetLeadershipVTO(context.Background())
	assert.ErrorIs(t, err, ErrLeadershipVisionNotFound)
	assert.Equal(t, []string{"LeadershipVision"}, fake.Ops())
}

func TestGetLeadershipVTOSectionFailure(t *testing.T) {
	s, fake := newService(t)
	fake.Nodes("LeadershipVision", "visions", map[string]any{"id": "v1"})
	fake.Fail("VisionThreeYearGoals", "timeout")

	_, err := s.GetLeadershipVTO(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}
