package role

// SeerRole inspects one player per night (command-driven, mana-gated).
type SeerRole struct {
	Base
	nm NightMana
}

func NewSeer(playerID int64) *SeerRole {
	r := &SeerRole{Base: NewBase(playerID)}
	r.nm.ResetNightMana()
	return r
}

func (s *SeerRole) Name() Name           { return Seer }
func (s *SeerRole) Mana() bool           { return s.nm.Mana() }
func (s *SeerRole) UseMana()             { s.nm.UseMana() }
func (s *SeerRole) ResetNightMana()      { s.nm.ResetNightMana() }
func (s *SeerRole) OnStartGame(p Poster) { DefaultOnStartGame(s, p) }
