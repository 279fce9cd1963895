package world

import "math/rand"

// WeatherKind identifies a moving weather system.
type WeatherKind uint8

const (
	Rain WeatherKind = iota
	HeatWave
	ColdFront
	Fog
	NumWeatherKinds
)

type weatherProfile struct {
	name     string
	tempMod  float64
	humidMod float64
}

var weatherProfiles = [NumWeatherKinds]weatherProfile{
	Rain:      {"rain", -5, 40},
	HeatWave:  {"heat_wave", 15, -20},
	ColdFront: {"cold_front", -15, 10},
	Fog:       {"fog", -2, 30},
}

func (k WeatherKind) String() string {
	if k >= NumWeatherKinds {
		return "unknown"
	}
	return weatherProfiles[k].name
}

// WeatherSystem is a circular front drifting across the map.
type WeatherSystem struct {
	Kind      WeatherKind
	X, Y      float64
	DirX      float64
	DirY      float64
	Speed     float64 // cells per frame
	Radius    int
	Intensity float64
	Duration  int // frames remaining
}

// spawnWeather creates a system on a random edge heading inward.
func spawnWeather(width, height int, rng *rand.Rand) WeatherSystem {
	ws := WeatherSystem{Kind: WeatherKind(rng.Intn(int(NumWeatherKinds)))}

	switch rng.Intn(4) {
	case 0: // north edge, moving south
		ws.X, ws.Y = float64(rng.Intn(width)), 0
		ws.DirX, ws.DirY = 0, 1
	case 1: // east edge, moving west
		ws.X, ws.Y = float64(width-1), float64(rng.Intn(height))
		ws.DirX, ws.DirY = -1, 0
	case 2: // south edge, moving north
		ws.X, ws.Y = float64(rng.Intn(width)), float64(height-1)
		ws.DirX, ws.DirY = 0, -1
	default: // west edge, moving east
		ws.X, ws.Y = 0, float64(rng.Intn(height))
		ws.DirX, ws.DirY = 1, 0
	}

	ws.Speed = 0.05 + rng.Float64()*0.15
	ws.Radius = 5 + rng.Intn(10)
	ws.Intensity = 0.3 + rng.Float64()*0.7
	ws.Duration = 100 + rng.Intn(400)
	return ws
}

// step advances the system and applies it to the grid. It returns false when
// the system has drifted off the map.
func (ws *WeatherSystem) step(g *Grid) bool {
	nx := ws.X + ws.DirX*ws.Speed
	ny := ws.Y + ws.DirY*ws.Speed
	r := float64(ws.Radius)
	if nx < -r || nx > float64(g.width)+r || ny < -r || ny > float64(g.height)+r {
		return false
	}
	ws.X, ws.Y = nx, ny

	p := weatherProfiles[ws.Kind]
	g.forEachInRadius(int(nx), int(ny), ws.Radius, func(c *Cell, d float64) {
		f := (1 - d/r) * ws.Intensity
		c.AddTemperature(p.tempMod * f * 0.1)
		c.AddHumidity(p.humidMod * f * 0.1)

		switch {
		case ws.Kind == Rain && f > 0.7:
			c.AddWater(0.1)
		case ws.Kind == HeatWave && f > 0.8:
			c.AddWater(-0.05)
		}
	})
	return true
}
