package role

// GuardRole protects one player per night (command-driven); the "not the
// same target as yesterday" rule is state the game actor tracks
// (GameInfo.GuardYesterdayTarget), not the role itself.
type GuardRole struct {
	Base
	nm NightMana
}

func NewGuard(playerID int64) *GuardRole {
	r := &GuardRole{Base: NewBase(playerID)}
	r.nm.ResetNightMana()
	return r
}

func (g *GuardRole) Name() Name           { return Guard }
func (g *GuardRole) Mana() bool           { return g.nm.Mana() }
func (g *GuardRole) UseMana()             { g.nm.UseMana() }
func (g *GuardRole) ResetNightMana()      { g.nm.ResetNightMana() }
func (g *GuardRole) OnStartGame(p Poster) { DefaultOnStartGame(g, p) }
