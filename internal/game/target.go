package game

// Target is a parsed command argument: either a 1-based index into a
// reference list or a directly-named user id (spec.md §4.2: "a target
// argument is either a numeric index... or a mention token decoded as a
// user id").
type Target struct {
	IsIndex bool
	Index   int
	ID      int64
}

func IndexTarget(i int) Target  { return Target{IsIndex: true, Index: i} }
func IDTarget(id int64) Target  { return Target{ID: id} }

// resolveTarget mirrors the source's get_from_target
// (original_source/src/ws/game/cmds.rs). requireAlive nil means either
// alive or dead is acceptable; true requires the resolved id be alive;
// false requires it be dead (used by Reborn, which indexes into the
// dead list).
func resolveTarget(alive, dead []int64, t Target, requireAlive *bool) (int64, error) {
	refs := alive
	if requireAlive != nil && !*requireAlive {
		refs = dead
	}

	if t.IsIndex {
		if t.Index < 1 || t.Index > len(refs) {
			return 0, ErrInvalidIndex
		}
		return refs[t.Index-1], nil
	}

	inAlive := containsI64(alive, t.ID)
	inDead := containsI64(dead, t.ID)
	if !inAlive && !inDead {
		return 0, ErrTargetNotInGame
	}
	if requireAlive != nil {
		if *requireAlive && inDead {
			return 0, ErrTargetNotAlive
		}
		if !*requireAlive && inAlive {
			return 0, ErrTargetNotDead
		}
	}
	return t.ID, nil
}

func containsI64(xs []int64, x int64) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func boolPtr(b bool) *bool { return &b }
