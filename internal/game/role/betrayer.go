package role

// BetrayerRole has no power, no mana, no night action. It is aligned with
// the wolves for win-condition counting only (handled by the win
// checker's faction table, not by this role itself).
type BetrayerRole struct{ Base }

func NewBetrayer(playerID int64) *BetrayerRole {
	return &BetrayerRole{Base: NewBase(playerID)}
}

func (b *BetrayerRole) Name() Name           { return Betrayer }
func (b *BetrayerRole) OnStartGame(p Poster) { DefaultOnStartGame(b, p) }
