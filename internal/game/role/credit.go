package role

// NightMana is embedded by every role that gets a once-per-night action
// credit. It starts spent; the game loop calls ResetNightMana on every
// night phase entry.
type NightMana struct{ mana bool }

func (m *NightMana) Mana() bool      { return m.mana }
func (m *NightMana) UseMana()        { m.mana = false }
func (m *NightMana) ResetNightMana() { m.mana = true }

// OnceAbility is embedded by roles with a once-per-game power credit.
// Starts available.
type OnceAbility struct{ available bool }

func NewOnceAbility() OnceAbility  { return OnceAbility{available: true} }
func (o *OnceAbility) Power() bool { return o.available }
func (o *OnceAbility) UsePower()   { o.available = false }
