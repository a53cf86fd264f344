package weather

type Icon int64

const (
	NONE_ICON Icon = iota
	STORM_ICON
	LIGHT_RAIN_ICON
	RAIN_ICON
	SNOW_ICON
	FOG_ICON
	CLEAR_ICON
	LIGHT_CLOUDS_ICON
	CLOUDY_ICON
)

var iconNames = map[Icon]string{
	NONE_ICON:         "none",
	STORM_ICON:        "storm",
	LIGHT_RAIN_ICON:   "light_rain",
	RAIN_ICON:         "rain",
	SNOW_ICON:         "snow",
	FOG_ICON:          "fog",
	CLEAR_ICON:        "clear",
	LIGHT_CLOUDS_ICON: "light_clouds",
	CLOUDY_ICON:       "cloudy",
}

func (i Icon) String() string {
	if name, ok := iconNames[i]; ok {
		return name
	}
	return "none"
}

func Icons() []Icon {
	return []Icon{NONE_ICON, STORM_ICON, LIGHT_RAIN_ICON, RAIN_ICON, SNOW_ICON, FOG_ICON, CLEAR_ICON, LIGHT_CLOUDS_ICON, CLOUDY_ICON}
}

// IconFor maps an OpenWeatherMap condition id to an icon. Unknown ids fall
// back to NONE_ICON.
func IconFor(conditionId int) Icon {
	switch {
	case conditionId == 0:
		return NONE_ICON
	case conditionId >= 200 && conditionId <= 232:
		return STORM_ICON
	case conditionId >= 300 && conditionId <= 321:
		return LIGHT_RAIN_ICON
	case conditionId >= 500 && conditionId <= 504:
		return RAIN_ICON
	case conditionId == 511:
		return SNOW_ICON
	case conditionId >= 520 && conditionId <= 531:
		return RAIN_ICON
	case conditionId >= 600 && conditionId <= 622:
		return SNOW_ICON
	case conditionId >= 701 && conditionId <= 761:
		return FOG_ICON
	case conditionId == 781:
		return STORM_ICON
	case conditionId == 800:
		return CLEAR_ICON
	case conditionId == 801:
		return LIGHT_CLOUDS_ICON
	case conditionId >= 802 && conditionId <= 804:
		return CLOUDY_ICON
	}
	return NONE_ICON
}
