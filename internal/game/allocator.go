package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/duskwatch/werewolf/internal/game/role"
)

// Spec is one distribution rule for a single role at a single player
// count: a bare integer is Fixed, a two-element integer array is Range,
// a two-element [float, int] array is Rate.
type Spec struct {
	Kind  SpecKind
	Fixed int
	A, B  int     // Range bounds
	Rate  float64 // Rate probability
	Max   int     // Rate cap
}

type SpecKind int

const (
	KindFixed SpecKind = iota
	KindRange
	KindRate
)

func (s *Spec) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty role spec")
	}
	if trimmed[0] != '[' {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("role spec: %w", err)
		}
		*s = Spec{Kind: KindFixed, Fixed: n}
		return nil
	}

	var raw []json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("role spec: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("role spec: expected 2 elements, got %d", len(raw))
	}

	// A literal decimal point in the first element distinguishes Rate
	// ([float, int]) from Range ([int, int]).
	if strings.Contains(raw[0].String(), ".") {
		rate, err := raw[0].Float64()
		if err != nil {
			return fmt.Errorf("role spec rate: %w", err)
		}
		max, err := raw[1].Int64()
		if err != nil {
			return fmt.Errorf("role spec rate max: %w", err)
		}
		*s = Spec{Kind: KindRate, Rate: rate, Max: int(max)}
		return nil
	}

	a, err := raw[0].Int64()
	if err != nil {
		return fmt.Errorf("role spec range a: %w", err)
	}
	b, err := raw[1].Int64()
	if err != nil {
		return fmt.Errorf("role spec range b: %w", err)
	}
	*s = Spec{Kind: KindRange, A: int(a), B: int(b)}
	return nil
}

// RoleConfig maps player count -> role name -> distribution spec.
type RoleConfig map[int]map[string]Spec

func LoadRoleConfig(path string) (RoleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role config: %w", err)
	}
	var raw map[string]map[string]Spec
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse role config: %w", err)
	}
	cfg := make(RoleConfig, len(raw))
	for k, v := range raw {
		var n int
		if _, err := fmt.Sscanf(k, "%d", &n); err != nil {
			return nil, fmt.Errorf("role config key %q: %w", k, err)
		}
		cfg[n] = v
	}
	return cfg, nil
}

// AllocateRoles assigns all Fixed first (subtracting from remaining
// slots), then all Range
// (skipping any that would overshoot), then loop polling Rate entries
// until slots reach zero. The participant list is shuffled and dealt in
// that order. Failure to fill every slot is a terminal error.
func AllocateRoles(cfg RoleConfig, uids []int64) (map[int64]role.Role, map[string]int, error) {
	specs, ok := cfg[len(uids)]
	if !ok {
		return nil, nil, fmt.Errorf("no role config for %d players", len(uids))
	}

	remaining := len(uids)
	counts := make(map[string]int)

	for name, spec := range specs {
		if spec.Kind == KindFixed {
			counts[name] = spec.Fixed
			remaining -= spec.Fixed
		}
	}

	for name, spec := range specs {
		if spec.Kind != KindRange {
			continue
		}
		r := spec.A
		if spec.B > spec.A {
			r = spec.A + rand.Intn(spec.B-spec.A+1)
		}
		if remaining < r {
			continue
		}
		counts[name] = r
		remaining -= r
	}

	for remaining > 0 {
		progressed := false
		for name, spec := range specs {
			if spec.Kind != KindRate {
				continue
			}
			if remaining == 0 {
				break
			}
			if rand.Float64() < spec.Rate {
				if counts[name] >= spec.Max {
					continue
				}
				counts[name]++
				remaining--
				progressed = true
			}
		}
		if !progressed && remaining > 0 {
			return nil, nil, fmt.Errorf("role allocator: could not fill %d remaining slots", remaining)
		}
	}

	shuffled := append([]int64(nil), uids...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	players := make(map[int64]role.Role, len(uids))
	for name, n := range counts {
		for i := 0; i < n; i++ {
			if len(shuffled) == 0 {
				return nil, nil, fmt.Errorf("role allocator: ran out of players while dealing %s", name)
			}
			id := shuffled[len(shuffled)-1]
			shuffled = shuffled[:len(shuffled)-1]

			r, err := newRole(name, id)
			if err != nil {
				return nil, nil, err
			}
			players[id] = r
		}
	}

	return players, counts, nil
}

func newRole(name string, id int64) (role.Role, error) {
	switch role.Name(name) {
	case role.Villager:
		return role.NewVillager(id), nil
	case role.Werewolf:
		return role.NewWerewolf(id), nil
	case role.Superwolf:
		return role.NewSuperwolf(id), nil
	case role.Seer:
		return role.NewSeer(id), nil
	case role.Guard:
		return role.NewGuard(id), nil
	case role.Lycan:
		return role.NewLycan(id), nil
	case role.Fox:
		return role.NewFox(id), nil
	case role.Witch:
		return role.NewWitch(id), nil
	case role.Cupid:
		return role.NewCupid(id), nil
	case role.Betrayer:
		return role.NewBetrayer(id), nil
	default:
		return nil, fmt.Errorf("unknown role %q", name)
	}
}
