package role

// CupidRole has one once-per-game power (Ship), usable only on day 0; it
// expires unused at the night-0 boundary.
type CupidRole struct {
	Base
	power OnceAbility
}

func NewCupid(playerID int64) *CupidRole {
	return &CupidRole{Base: NewBase(playerID), power: NewOnceAbility()}
}

func (c *CupidRole) Name() Name  { return Cupid }
func (c *CupidRole) Power() bool { return c.power.Power() }
func (c *CupidRole) UsePower()   { c.power.UsePower() }

func (c *CupidRole) OnNight(numDay uint16) {
	if numDay == 0 {
		c.power.UsePower()
	}
}

func (c *CupidRole) OnStartGame(p Poster) { DefaultOnStartGame(c, p) }
