package ruleset

import (
	"cssinval/css"
	"cssinval/features"
)

var viewportFeatures = map[string]bool{
	"width":              true,
	"height":             true,
	"min-width":          true,
	"max-width":          true,
	"min-height":         true,
	"max-height":         true,
	"aspect-ratio":       true,
	"min-aspect-ratio":   true,
	"max-aspect-ratio":   true,
	"orientation":        true,
	"resolution":         true,
	"min-resolution":     true,
	"max-resolution":     true,
	"device-pixel-ratio": true,

	"-webkit-device-pixel-ratio":     true,
	"-webkit-min-device-pixel-ratio": true,
	"-webkit-max-device-pixel-ratio": true,
}

var deviceFeatures = map[string]bool{
	"device-width":            true,
	"device-height":           true,
	"min-device-width":        true,
	"max-device-width":        true,
	"min-device-height":       true,
	"max-device-height":       true,
	"device-aspect-ratio":     true,
	"min-device-aspect-ratio": true,
	"max-device-aspect-ratio": true,
}

var unitFlags = map[string]features.UnitFlags{
	"em": features.UnitFontRelative, "ex": features.UnitFontRelative, "ch": features.UnitFontRelative,
	"ic": features.UnitFontRelative, "lh": features.UnitFontRelative, "cap": features.UnitFontRelative,

	"rem": features.UnitRootFontRelative, "rex": features.UnitRootFontRelative, "rch": features.UnitRootFontRelative,
	"ric": features.UnitRootFontRelative, "rlh": features.UnitRootFontRelative, "rcap": features.UnitRootFontRelative,

	"vw": features.UnitStaticViewport, "vh": features.UnitStaticViewport, "vi": features.UnitStaticViewport,
	"vb": features.UnitStaticViewport, "vmin": features.UnitStaticViewport, "vmax": features.UnitStaticViewport,
	"svw": features.UnitStaticViewport, "svh": features.UnitStaticViewport, "svi": features.UnitStaticViewport,
	"svb": features.UnitStaticViewport, "svmin": features.UnitStaticViewport, "svmax": features.UnitStaticViewport,
	"lvw": features.UnitStaticViewport, "lvh": features.UnitStaticViewport, "lvi": features.UnitStaticViewport,
	"lvb": features.UnitStaticViewport, "lvmin": features.UnitStaticViewport, "lvmax": features.UnitStaticViewport,

	"dvw": features.UnitDynamicViewport, "dvh": features.UnitDynamicViewport, "dvi": features.UnitDynamicViewport,
	"dvb": features.UnitDynamicViewport, "dvmin": features.UnitDynamicViewport, "dvmax": features.UnitDynamicViewport,

	"cqw": features.UnitContainer, "cqh": features.UnitContainer, "cqi": features.UnitContainer,
	"cqb": features.UnitContainer, "cqmin": features.UnitContainer, "cqmax": features.UnitContainer,
}

// MediaFlags classifies what the result of a media query depends on.
// Media types alone ("print", "screen") depend on nothing that changes.
func MediaFlags(mq css.MediaQuery) features.MediaQueryResultFlags {
	var flags features.MediaQueryResultFlags
	for _, f := range mq.Features {
		switch {
		case viewportFeatures[f.Name]:
			flags.ViewportDependent = true
		case deviceFeatures[f.Name]:
			flags.DeviceDependent = true
		}
		flags.Units |= unitFlags[f.Value.Unit]
	}
	return flags
}
