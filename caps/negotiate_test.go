package caps

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

var negotiateTestCases = map[string]struct {
	Requested []string
	Supported []string

	ExpectedEnabled  []string
	ExpectedRejected []string
}{
	"TestPartialSupport": {
		Requested:        []string{"A", "B", "C"},
		Supported:        []string{"A", "C"},
		ExpectedEnabled:  []string{"A", "C"},
		ExpectedRejected: []string{"B"},
	},
	"TestOrderFollowsRequest": {
		Requested:       []string{"VK_KHR_swapchain", "VK_EXT_memory_budget", "VK_KHR_maintenance4"},
		Supported:       []string{"VK_KHR_maintenance4", "VK_KHR_swapchain", "VK_EXT_memory_budget"},
		ExpectedEnabled: []string{"VK_KHR_swapchain", "VK_EXT_memory_budget", "VK_KHR_maintenance4"},
	},
	"TestNothingSupported": {
		Requested:        []string{"A", "B"},
		ExpectedRejected: []string{"A", "B"},
	},
	"TestNothingRequested": {
		Supported: []string{"A"},
	},
	"TestDuplicateRequest": {
		Requested:        []string{"A", "B", "A", "B"},
		Supported:        []string{"A"},
		ExpectedEnabled:  []string{"A"},
		ExpectedRejected: []string{"B"},
	},
}

type logRecord struct {
	Level string `json:"level"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
}

func readLogRecords(t *testing.T, output *bytes.Buffer) []logRecord {
	var records []logRecord

	decoder := json.NewDecoder(output)
	for decoder.More() {
		var record logRecord
		require.NoError(t, decoder.Decode(&record))
		records = append(records, record)
	}
	return records
}

func TestNegotiate(t *testing.T) {
	for testName, testCase := range negotiateTestCases {
		t.Run(testName, func(t *testing.T) {
			var output bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&output, nil))

			supported := NewNameSet(testCase.Supported...)
			negotiation := Negotiate(logger, "extension", testCase.Requested, supported)

			require.Equal(t, testCase.ExpectedEnabled, negotiation.Enabled)
			require.Equal(t, testCase.ExpectedRejected, negotiation.Rejected)

			for _, name := range negotiation.Enabled {
				require.True(t, supported.Has(name))
			}

			// One warning per rejected name, in request order
			var warned []string
			for _, record := range readLogRecords(t, &output) {
				require.Equal(t, slog.LevelWarn.String(), record.Level)
				require.Equal(t, "extension", record.Kind)
				warned = append(warned, record.Name)
			}
			require.Equal(t, testCase.ExpectedRejected, warned)
		})
	}
}

func TestNegotiateStatus(t *testing.T) {
	negotiation := Negotiate(nil, "extension", []string{"A", "B"}, NewNameSet("A", "C"))

	status, ok := negotiation.Status("A")
	require.True(t, ok)
	require.Equal(t, Status{Requested: true, Supported: true}, status)

	status, ok = negotiation.Status("B")
	require.True(t, ok)
	require.Equal(t, Status{Requested: true, Supported: false}, status)

	_, ok = negotiation.Status("C")
	require.False(t, ok)
}

func TestNameSetNil(t *testing.T) {
	var set *NameSet
	require.False(t, set.Has("A"))
	require.Equal(t, 0, set.Len())
	require.Nil(t, set.Names())
	require.Equal(t, 2, NewNameSet("A", "B", "A").Len())

	set = NewNameSet("A")
	set.Add("B")
	require.True(t, set.Has("B"))
	require.ElementsMatch(t, []string{"A", "B"}, set.Names())
}

func TestEnabledLayers(t *testing.T) {
	require.Nil(t, EnabledLayers(LayerOptions{}))
	require.Equal(t, []string{ValidationLayerName}, EnabledLayers(LayerOptions{Validation: true}))
	require.Equal(t, []string{ValidationLayerName, CaptureLayerName}, EnabledLayers(LayerOptions{Validation: true, Capture: true}))
	require.Equal(t, []string{CaptureLayerName}, EnabledLayers(LayerOptions{Capture: true}))
}
