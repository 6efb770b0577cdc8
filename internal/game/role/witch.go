package role

// WitchRole has two independent once-per-game powers (reborn, curse)
// each additionally gated by the shared per-night mana credit: the witch
// can use at most one of reborn/curse per night even though each has its
// own lifetime budget.
type WitchRole struct {
	Base
	nm     NightMana
	reborn OnceAbility
	curse  OnceAbility
}

func NewWitch(playerID int64) *WitchRole {
	r := &WitchRole{
		Base:   NewBase(playerID),
		reborn: NewOnceAbility(),
		curse:  NewOnceAbility(),
	}
	r.nm.ResetNightMana()
	return r
}

func (w *WitchRole) Name() Name { return Witch }
func (w *WitchRole) Power() bool { return w.reborn.Power() }
func (w *WitchRole) UsePower()   { w.reborn.UsePower() }

func (w *WitchRole) Power2() bool { return w.curse.Power() }
func (w *WitchRole) UsePower2()   { w.curse.UsePower() }

func (w *WitchRole) Mana() bool      { return w.nm.Mana() }
func (w *WitchRole) UseMana()        { w.nm.UseMana() }
func (w *WitchRole) ResetNightMana() { w.nm.ResetNightMana() }

func (w *WitchRole) OnStartGame(p Poster) { DefaultOnStartGame(w, p) }
