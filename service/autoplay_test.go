package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"wizard-game/engine"
	"wizard-game/entities"
)

func bidOptions(values ...int) []engine.Action {
	out := make([]engine.Action, len(values))
	for i, v := range values {
		out[i] = engine.Action{Kind: engine.ActionBid, Player: "ann", Value: v}
	}
	return out
}

func TestLuaPolicyChoose(t *testing.T) {
	script := `
function choose(view, options)
  -- bid as many tricks as there are wizards in hand, else take the last card offered
  if view.phase == "bidding" then
    local wizards = 0
    for _, c in ipairs(view.hand) do
      if c == "wizard" then wizards = wizards + 1 end
    end
    for i, o in ipairs(options) do
      if o.value == wizards then return i end
    end
  end
  return #options
end
`
	p, err := NewLuaPolicy("test.lua", script)
	if err != nil {
		t.Fatalf("NewLuaPolicy: %v", err)
	}
	view := AutoplayView{
		Player: "ann",
		Phase:  engine.PhaseBidding,
		Round:  3,
		Trump:  "red",
		Hand:   []entities.Card{entities.NewWizard(), entities.NewWizard(), entities.NewNumbered(entities.Blue, 4)},
		Bids:   map[string]int{"bob": 1},
	}
	i, err := p.Choose(context.Background(), view, bidOptions(0, 1, 2, 3))
	if err != nil || i != 2 {
		t.Fatalf("Choose = %d, %v; want 2", i, err)
	}

	red := entities.NewNumbered(entities.Red, 2)
	plays := []engine.Action{
		{Kind: engine.ActionPlayCard, Card: &red},
		{Kind: engine.ActionPlayCard, Card: &red},
	}
	view.Phase = engine.PhasePlaying
	if i, err := p.Choose(context.Background(), view, plays); err != nil || i != 1 {
		t.Fatalf("Choose while playing = %d, %v", i, err)
	}
}

func TestLuaPolicyFailures(t *testing.T) {
	if _, err := NewLuaPolicy("broken.lua", "function choose("); err == nil {
		t.Fatalf("syntax error accepted")
	}
	for name, script := range map[string]string{
		"no choose":    `x = 1`,
		"not a number": `function choose(view, options) return "first" end`,
		"raises":       `function choose(view, options) error("nope") end`,
		"no io":        `function choose(view, options) io.write("x") return 1 end`,
		"no dofile":    `function choose(view, options) dofile("/etc/passwd") return 1 end`,
		"no loadfile":  `function choose(view, options) return loadfile("/etc/passwd")() end`,
	} {
		p, err := NewLuaPolicy(name, script)
		if err != nil {
			t.Fatalf("%s: NewLuaPolicy: %v", name, err)
		}
		if _, err := p.Choose(context.Background(), AutoplayView{}, bidOptions(0)); err == nil {
			t.Errorf("%s: Choose succeeded", name)
		}
	}
}

func TestLuaPolicyHasNoFileLoaders(t *testing.T) {
	p, err := NewLuaPolicy("globals.lua", `
function choose(view, options)
  if dofile == nil and loadfile == nil and print ~= nil then return 1 end
  return 2
end
`)
	if err != nil {
		t.Fatalf("NewLuaPolicy: %v", err)
	}
	if i, err := p.Choose(context.Background(), AutoplayView{}, bidOptions(0, 1)); err != nil || i != 0 {
		t.Fatalf("Choose = %d, %v; file loaders still reachable", i, err)
	}
}

func TestLuaPolicyTimeout(t *testing.T) {
	p, err := NewLuaPolicy("spin.lua", `function choose(view, options) while true do end end`)
	if err != nil {
		t.Fatalf("NewLuaPolicy: %v", err)
	}
	p.timeout = 20 * time.Millisecond
	done := make(chan error, 1)
	go func() {
		_, err := p.Choose(context.Background(), AutoplayView{}, bidOptions(0))
		done <- err
	}()
	select {
	case err := <-done:
		if err == nil || !strings.Contains(err.Error(), "context") {
			t.Fatalf("runaway script: err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runaway script was not stopped")
	}
}

// lastOption always takes the final option and remembers what it was offered.
type lastOption struct {
	mu      sync.Mutex
	offered [][]engine.Action
}

func (p *lastOption) Choose(ctx context.Context, view AutoplayView, options []engine.Action) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offered = append(p.offered, options)
	return len(options) - 1, nil
}

func (p *lastOption) first() ([]engine.Action, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.offered) == 0 {
		return nil, false
	}
	return p.offered[0], true
}

func TestTimeoutUsesAutoplayPolicy(t *testing.T) {
	policy := &lastOption{}
	journal := &memJournal{}
	m := NewManager(Options{
		Journal:     journal,
		Autoplay:    policy,
		Rules:       engine.DefaultOptions(),
		TurnTimeout: 20 * time.Millisecond,
	})
	t.Cleanup(m.Shutdown)
	_, err := m.CreateRoom(context.Background(), roster, seed(13))
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		entries := journal.all()
		offered, ok := policy.first()
		if len(entries) > 0 && ok {
			var made engine.Action
			if err := json.Unmarshal(entries[0].Payload, &made); err != nil {
				t.Fatalf("payload: %v", err)
			}
			want := offered[len(offered)-1]
			if made.Kind != want.Kind || made.Value != want.Value || made.Suit != want.Suit || !made.Forfeit {
				t.Fatalf("timed out move %+v, policy chose %+v", made, want)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no timed out move was journaled")
}
