package ai

// hardcoreFriendlySplashShare is the largest share of the hostile splash
// a hardcore thrower accepts landing on its own side.
const hardcoreFriendlySplashShare = 0.5

// NewHardcoreUnitAI creates the stricter combat module. It scores like
// vanilla but never advances while firing, always rethinks when attacked and
// refuses grenades that hurt its own side noticeably.
func NewHardcoreUnitAI() *VanillaUnitAI {
	m := NewVanillaUnitAI()
	m.kind = ModuleHardcore
	m.hardcore = true
	return m
}

func hardcoreGrenadeAcceptable(hostile, friendly float64) bool {
	return friendly <= hostile*hardcoreFriendlySplashShare
}
