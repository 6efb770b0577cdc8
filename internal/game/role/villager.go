package role

// VillagerRole has no power, no mana, no night action: a plain vote at
// day.
type VillagerRole struct{ Base }

func NewVillager(playerID int64) *VillagerRole {
	return &VillagerRole{Base: NewBase(playerID)}
}

func (v *VillagerRole) Name() Name           { return Villager }
func (v *VillagerRole) OnStartGame(p Poster) { DefaultOnStartGame(v, p) }
