package parking

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func runShell(t *testing.T, script ...string) string {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	tel := newTestTelemetry(t)
	var out bytes.Buffer
	sh := NewShellWithIO(NewSession(tel.provider), tel.provider,
		strings.NewReader(strings.Join(script, "\n")+"\n"), &out)
	sh.Run(context.Background())
	return out.String()
}

func TestShellTranscript(t *testing.T) {
	got := runShell(t,
		"add 5",
		"init 2 2",
		"add 10",
		"add 20",
		"add 10",
		"park",
		"park",
		"find 10",
		"exit 10",
		"exit 20 1",
		"park",
		"bogus",
		"quit",
		"status",
	)

	want := strings.Join([]string{
		"Error: Parking lot not created. Use: init <lanes> <capacity>",
		"Created a parking lot with 2 lanes of 2 cars",
		"Car 10 added to entrance queue",
		"Car 20 added to entrance queue",
		"Error: A car with ID 10 already exists in the system",
		"Car 10 parked in lane 1",
		"Car 20 parked in lane 1",
		"Car 10 found in lane 1 at position 2 from top",
		"Error: Cannot remove car 10: car 10 at position 2 of lane 1: car is not at the top of its lane",
		"Car 20 exited from lane 1",
		"Error: Entrance queue is empty. No car to park",
		"Error: Unknown command: bogus",
	}, "\n") + "\n"

	assert.Equal(t, want, got)
}

func TestShellArguments(t *testing.T) {
	got := runShell(t,
		"init 2",
		"init two 2",
		"init 0 2",
		"init 1 1",
		"park_in",
		"find x",
	)

	assert.Contains(t, got, "Usage: init <lanes> <capacity>\n")
	assert.Contains(t, got, "Error: \"two\" is not a number\n")
	assert.Contains(t, got, "Error: Please enter valid positive numbers")
	assert.Contains(t, got, "Created a parking lot with 1 lanes of 1 cars\n")
	assert.Contains(t, got, "Usage: park_in <lane>\n")
	assert.Contains(t, got, "Error: \"x\" is not a number\n")
}

func TestShellDiscardsAndMoves(t *testing.T) {
	got := runShell(t,
		"init 3 1",
		"add",
		"add",
		"add",
		"park_in 1",
		"park_in 1",
		"park",
		"move 1 3",
		"move_car 1 3",
		"move 2 2",
	)

	assert.Contains(t, got, "Car 1 added to entrance queue\n")
	assert.Contains(t, got, "Car 3 added to entrance queue\n")
	assert.Contains(t, got, "Car 1 parked in lane 1\n")
	assert.Contains(t, got, "Error: Selected lane is full. Car 2 cannot be parked\n")
	assert.Contains(t, got, "Car 3 parked in lane 2\n")
	assert.Contains(t, got, "Moved car 1 from lane 1 to lane 3\n")
	assert.Contains(t, got, "all cars moved, lane 1 is now empty\n")
	assert.Contains(t, got, "Car 1 moved from lane 3 to lane 3\n")
	assert.Contains(t, got, "source and target lanes are the same, no movement performed\n")
}

func TestShellStatus(t *testing.T) {
	got := runShell(t,
		"init 1 2",
		"add 4",
		"add 2",
		"park",
		"sort 1",
		"status -short",
		"status",
		"status -long",
	)

	assert.Contains(t, got, "Lane 1 has been sorted by car ID\n")
	assert.Contains(t, got, "Entrance      2\nLane 1 [1/2]  4\n")
	assert.Contains(t, got, "======= Parking Lot State =======\n")
	assert.Contains(t, got, "  Position 1 -> CarID: 4\n")
	assert.True(t, strings.HasSuffix(got, "Usage: status [-short]\n"))
}

func TestShellReset(t *testing.T) {
	got := runShell(t,
		"init 1 1",
		"reset",
		"park",
		"help",
	)

	assert.Contains(t, got, "System reset. Please initialize again.\n")
	assert.Contains(t, got, "Error: Parking lot not created. Use: init <lanes> <capacity>\n")
	assert.Contains(t, got, "Commands:\n")
	assert.Contains(t, got, "  help ")
}
