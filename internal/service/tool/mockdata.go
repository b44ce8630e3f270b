package tool

// Song is one recommendation entry.
type Song struct {
	Title string `json:"title"`
	Album string `json:"album"`
}

// lumiSongs maps a mood to candidate recommendations. Static placeholder
// data until a real catalog service exists.
var lumiSongs = map[string][]Song{
	"happy": {
		{Title: "Shine Bright", Album: "First Light"},
		{Title: "Happy Day", Album: "Luminous"},
		{Title: "Dancing Star", Album: "First Light"},
	},
	"sad": {
		{Title: "Moonlight Letter", Album: "Luminous"},
		{Title: "After the Rain", Album: "Prism Heart"},
	},
	"energetic": {
		{Title: "Supernova", Album: "Prism Heart"},
		{Title: "Run With Me", Album: "First Light"},
	},
}

type weatherSnapshot struct {
	Location    string
	Temperature int
	Condition   string
	Humidity    int
	WindSpeed   float64
}

var mockWeather = weatherSnapshot{
	Location:    "서울",
	Temperature: 5,
	Condition:   "맑음",
	Humidity:    45,
	WindSpeed:   3.2,
}
