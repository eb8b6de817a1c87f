package orchestration

import (
	"fmt"
	"sync"
	"time"

	"github.com/loayabdalslam/Orchestrator/pkg/logging"
)

// State is a pipeline stage.
type State string

const (
	StateIdle           State = "Idle"
	StatePlanning       State = "Planning"
	StateCodeGenerating State = "CodeGenerating"
	StateReviewing      State = "Reviewing"
	StateDeploying      State = "Deploying"
	StateDone           State = "Done"
	StateFailed         State = "Failed"
)

// Transition records one state change. Task is the task index for
// CodeGenerating and -1 otherwise.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	Task int       `json:"task"`
	At   time.Time `json:"at"`
}

func (t Transition) String() string {
	if t.To == StateCodeGenerating {
		return fmt.Sprintf("%s -> %s(%d)", t.From, t.To, t.Task)
	}
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}

// Listener observes transitions as they happen.
type Listener func(Transition)

var allowedTransitions = map[State][]State{
	StateIdle:           {StatePlanning, StateFailed},
	StatePlanning:       {StateCodeGenerating, StateFailed},
	StateCodeGenerating: {StateCodeGenerating, StateReviewing, StateFailed},
	StateReviewing:      {StateDeploying, StateDone, StateFailed},
	StateDeploying:      {StateDone, StateFailed},
}

// CanTransition reports whether the machine may move from one state to another.
func CanTransition(from, to State) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// machine tracks the state of one run. Done and Failed are absorbing.
type machine struct {
	mu       sync.Mutex
	state    State
	history  []Transition
	listener Listener
	logger   *logging.Logger
	now      func() time.Time
}

func newMachine(listener Listener, logger *logging.Logger, now func() time.Time) *machine {
	return &machine{state: StateIdle, listener: listener, logger: logger, now: now}
}

func (m *machine) to(next State, task int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !CanTransition(m.state, next) {
		return fmt.Errorf("invalid transition %s -> %s", m.state, next)
	}
	if next != StateCodeGenerating {
		task = -1
	}
	t := Transition{From: m.state, To: next, Task: task, At: m.now()}
	m.state = next
	m.history = append(m.history, t)
	m.logger.Debug("State %s", t)
	if m.listener != nil {
		m.listener(t)
	}
	return nil
}

func (m *machine) transitions() []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Transition(nil), m.history...)
}
