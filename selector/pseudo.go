package selector

import "strings"

// PseudoType identifies pseudo-classes and pseudo-elements.
type PseudoType uint16

const (
	PseudoUnknown PseudoType = iota

	// user action and state
	PseudoActive
	PseudoHover
	PseudoFocus
	PseudoFocusVisible
	PseudoFocusWithin
	PseudoDrag
	PseudoTarget
	PseudoLink
	PseudoVisited
	PseudoAnyLink
	PseudoWindowInactive
	PseudoSpatialNavigationFocus

	// structural
	PseudoRoot
	PseudoEmpty
	PseudoScope
	PseudoFirstChild
	PseudoLastChild
	PseudoOnlyChild
	PseudoFirstOfType
	PseudoLastOfType
	PseudoOnlyOfType
	PseudoNthChild
	PseudoNthLastChild
	PseudoNthOfType
	PseudoNthLastOfType

	// forms and elements state
	PseudoAutofill
	PseudoAutofillPreviewed
	PseudoAutofillSelected
	PseudoChecked
	PseudoDefault
	PseudoDefined
	PseudoDisabled
	PseudoEnabled
	PseudoIndeterminate
	PseudoInRange
	PseudoOutOfRange
	PseudoInvalid
	PseudoValid
	PseudoUserInvalid
	PseudoUserValid
	PseudoOptional
	PseudoRequired
	PseudoPlaceholderShown
	PseudoReadOnly
	PseudoReadWrite
	PseudoOpen
	PseudoClosed
	PseudoModal
	PseudoPopoverOpen
	PseudoFullscreen
	PseudoFullScreen
	PseudoFullScreenAncestor
	PseudoPictureInPicture
	PseudoPaused
	PseudoPlaying
	PseudoXrOverlay
	PseudoHasDatalist
	PseudoMultiSelectFocus
	PseudoListBox
	PseudoIsHTML
	PseudoHostHasAppearance
	PseudoLang
	PseudoDir
	PseudoState
	PseudoToggle

	// logical combinations
	PseudoIs
	PseudoWhere
	PseudoNot
	PseudoHas
	PseudoAny

	// shadow DOM
	PseudoHost
	PseudoHostContext
	PseudoSlotted
	PseudoPart
	PseudoContent

	// pseudo-elements
	PseudoBefore
	PseudoAfter
	PseudoMarker
	PseudoBackdrop
	PseudoSelection
	PseudoFirstLine
	PseudoFirstLetter
	PseudoPlaceholder
	PseudoFileSelectorButton
	PseudoHighlight
	PseudoScrollbar
	PseudoWebKitCustomElement
	PseudoInternalElement

	// @page
	PseudoFirstPage
	PseudoLeftPage
	PseudoRightPage
	PseudoBlankPage

	// internal
	PseudoRelativeAnchor
	PseudoParent

	pseudoTypeCount
)

var pseudoNames = [pseudoTypeCount]string{
	PseudoUnknown:                "unknown",
	PseudoActive:                 "active",
	PseudoHover:                  "hover",
	PseudoFocus:                  "focus",
	PseudoFocusVisible:           "focus-visible",
	PseudoFocusWithin:            "focus-within",
	PseudoDrag:                   "-internal-drag",
	PseudoTarget:                 "target",
	PseudoLink:                   "link",
	PseudoVisited:                "visited",
	PseudoAnyLink:                "any-link",
	PseudoWindowInactive:         "window-inactive",
	PseudoSpatialNavigationFocus: "-internal-spatial-navigation-focus",
	PseudoRoot:                   "root",
	PseudoEmpty:                  "empty",
	PseudoScope:                  "scope",
	PseudoFirstChild:             "first-child",
	PseudoLastChild:              "last-child",
	PseudoOnlyChild:              "only-child",
	PseudoFirstOfType:            "first-of-type",
	PseudoLastOfType:             "last-of-type",
	PseudoOnlyOfType:             "only-of-type",
	PseudoNthChild:               "nth-child",
	PseudoNthLastChild:           "nth-last-child",
	PseudoNthOfType:              "nth-of-type",
	PseudoNthLastOfType:          "nth-last-of-type",
	PseudoAutofill:               "autofill",
	PseudoAutofillPreviewed:      "-internal-autofill-previewed",
	PseudoAutofillSelected:       "-internal-autofill-selected",
	PseudoChecked:                "checked",
	PseudoDefault:                "default",
	PseudoDefined:                "defined",
	PseudoDisabled:               "disabled",
	PseudoEnabled:                "enabled",
	PseudoIndeterminate:          "indeterminate",
	PseudoInRange:                "in-range",
	PseudoOutOfRange:             "out-of-range",
	PseudoInvalid:                "invalid",
	PseudoValid:                  "valid",
	PseudoUserInvalid:            "user-invalid",
	PseudoUserValid:              "user-valid",
	PseudoOptional:               "optional",
	PseudoRequired:               "required",
	PseudoPlaceholderShown:       "placeholder-shown",
	PseudoReadOnly:               "read-only",
	PseudoReadWrite:              "read-write",
	PseudoOpen:                   "open",
	PseudoClosed:                 "closed",
	PseudoModal:                  "modal",
	PseudoPopoverOpen:            "popover-open",
	PseudoFullscreen:             "fullscreen",
	PseudoFullScreen:             "-webkit-full-screen",
	PseudoFullScreenAncestor:     "-webkit-full-screen-ancestor",
	PseudoPictureInPicture:       "picture-in-picture",
	PseudoPaused:                 "paused",
	PseudoPlaying:                "playing",
	PseudoXrOverlay:              "xr-overlay",
	PseudoHasDatalist:            "-internal-has-datalist",
	PseudoMultiSelectFocus:       "-internal-multi-select-focus",
	PseudoListBox:                "-internal-list-box",
	PseudoIsHTML:                 "-internal-is-html",
	PseudoHostHasAppearance:      "-internal-shadow-host-has-appearance",
	PseudoLang:                   "lang",
	PseudoDir:                    "dir",
	PseudoState:                  "state",
	PseudoToggle:                 "toggle",
	PseudoIs:                     "is",
	PseudoWhere:                  "where",
	PseudoNot:                    "not",
	PseudoHas:                    "has",
	PseudoAny:                    "-webkit-any",
	PseudoHost:                   "host",
	PseudoHostContext:            "host-context",
	PseudoSlotted:                "slotted",
	PseudoPart:                   "part",
	PseudoContent:                "content",
	PseudoBefore:                 "before",
	PseudoAfter:                  "after",
	PseudoMarker:                 "marker",
	PseudoBackdrop:               "backdrop",
	PseudoSelection:              "selection",
	PseudoFirstLine:              "first-line",
	PseudoFirstLetter:            "first-letter",
	PseudoPlaceholder:            "placeholder",
	PseudoFileSelectorButton:     "file-selector-button",
	PseudoHighlight:              "highlight",
	PseudoScrollbar:              "-webkit-scrollbar",
	PseudoWebKitCustomElement:    "-webkit-custom-element",
	PseudoInternalElement:        "-internal-element",
	PseudoFirstPage:              "first",
	PseudoLeftPage:               "left",
	PseudoRightPage:              "right",
	PseudoBlankPage:              "blank",
	PseudoRelativeAnchor:         "-internal-relative-anchor",
	PseudoParent:                 "&",
}

// String returns name used for debugging output.
func (p PseudoType) String() string {
	if p < pseudoTypeCount {
		return pseudoNames[p]
	}
	return "invalid"
}

// pseudo-class names recognized by parser, aliases included
var pseudoClassByName = map[string]PseudoType{
	"active":                               PseudoActive,
	"hover":                                PseudoHover,
	"focus":                                PseudoFocus,
	"focus-visible":                        PseudoFocusVisible,
	"focus-within":                         PseudoFocusWithin,
	"-internal-drag":                       PseudoDrag,
	"target":                               PseudoTarget,
	"link":                                 PseudoLink,
	"visited":                              PseudoVisited,
	"any-link":                             PseudoAnyLink,
	"-webkit-any-link":                     PseudoAnyLink,
	"window-inactive":                      PseudoWindowInactive,
	"-internal-spatial-navigation-focus":   PseudoSpatialNavigationFocus,
	"root":                                 PseudoRoot,
	"empty":                                PseudoEmpty,
	"scope":                                PseudoScope,
	"first-child":                          PseudoFirstChild,
	"last-child":                           PseudoLastChild,
	"only-child":                           PseudoOnlyChild,
	"first-of-type":                        PseudoFirstOfType,
	"last-of-type":                         PseudoLastOfType,
	"only-of-type":                         PseudoOnlyOfType,
	"nth-child":                            PseudoNthChild,
	"nth-last-child":                       PseudoNthLastChild,
	"nth-of-type":                          PseudoNthOfType,
	"nth-last-of-type":                     PseudoNthLastOfType,
	"autofill":                             PseudoAutofill,
	"-webkit-autofill":                     PseudoAutofill,
	"-internal-autofill-previewed":         PseudoAutofillPreviewed,
	"-internal-autofill-selected":          PseudoAutofillSelected,
	"checked":                              PseudoChecked,
	"default":                              PseudoDefault,
	"defined":                              PseudoDefined,
	"disabled":                             PseudoDisabled,
	"enabled":                              PseudoEnabled,
	"indeterminate":                        PseudoIndeterminate,
	"in-range":                             PseudoInRange,
	"out-of-range":                         PseudoOutOfRange,
	"invalid":                              PseudoInvalid,
	"valid":                                PseudoValid,
	"user-invalid":                         PseudoUserInvalid,
	"user-valid":                           PseudoUserValid,
	"optional":                             PseudoOptional,
	"required":                             PseudoRequired,
	"placeholder-shown":                    PseudoPlaceholderShown,
	"read-only":                            PseudoReadOnly,
	"read-write":                           PseudoReadWrite,
	"open":                                 PseudoOpen,
	"closed":                               PseudoClosed,
	"modal":                                PseudoModal,
	"popover-open":                         PseudoPopoverOpen,
	"fullscreen":                           PseudoFullscreen,
	"-webkit-full-screen":                  PseudoFullScreen,
	"-webkit-full-screen-ancestor":         PseudoFullScreenAncestor,
	"picture-in-picture":                   PseudoPictureInPicture,
	"paused":                               PseudoPaused,
	"playing":                              PseudoPlaying,
	"xr-overlay":                           PseudoXrOverlay,
	"-internal-has-datalist":               PseudoHasDatalist,
	"-internal-multi-select-focus":         PseudoMultiSelectFocus,
	"-internal-list-box":                   PseudoListBox,
	"-internal-is-html":                    PseudoIsHTML,
	"-internal-shadow-host-has-appearance": PseudoHostHasAppearance,
	"lang":                                 PseudoLang,
	"dir":                                  PseudoDir,
	"state":                                PseudoState,
	"toggle":                               PseudoToggle,
	"is":                                   PseudoIs,
	"matches":                              PseudoIs,
	"where":                                PseudoWhere,
	"not":                                  PseudoNot,
	"has":                                  PseudoHas,
	"-webkit-any":                          PseudoAny,
	"host":                                 PseudoHost,
	"host-context":                         PseudoHostContext,
}

var pseudoElementByName = map[string]PseudoType{
	"before":               PseudoBefore,
	"after":                PseudoAfter,
	"marker":               PseudoMarker,
	"backdrop":             PseudoBackdrop,
	"selection":            PseudoSelection,
	"first-line":           PseudoFirstLine,
	"first-letter":         PseudoFirstLetter,
	"placeholder":          PseudoPlaceholder,
	"file-selector-button": PseudoFileSelectorButton,
	"highlight":            PseudoHighlight,
	"-webkit-scrollbar":    PseudoScrollbar,
	"slotted":              PseudoSlotted,
	"part":                 PseudoPart,
	"content":              PseudoContent,
}

var pagePseudoByName = map[string]PseudoType{
	"first": PseudoFirstPage,
	"left":  PseudoLeftPage,
	"right": PseudoRightPage,
	"blank": PseudoBlankPage,
}

// legacy single colon syntax is accepted for these pseudo-elements
var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
}

// LookupPseudoClass returns pseudo-class type by its (already folded) name.
func LookupPseudoClass(name string) PseudoType {
	if p, ok := pseudoClassByName[name]; ok {
		return p
	}
	return PseudoUnknown
}

// LookupPseudoElement returns pseudo-element type by its (already folded)
// name. Vendor specific names map to custom element kinds.
func LookupPseudoElement(name string) PseudoType {
	if p, ok := pseudoElementByName[name]; ok {
		return p
	}
	switch {
	case strings.HasPrefix(name, "-webkit-"):
		return PseudoWebKitCustomElement
	case strings.HasPrefix(name, "-internal-"):
		return PseudoInternalElement
	}
	return PseudoUnknown
}

// NeedsRareData reports whether selector of this pseudo type carries
// arguments which do not fit into plain value.
func (p PseudoType) NeedsRareData() bool {
	switch p {
	case PseudoNthChild, PseudoNthLastChild, PseudoNthOfType, PseudoNthLastOfType,
		PseudoIs, PseudoWhere, PseudoNot, PseudoHas, PseudoAny,
		PseudoHost, PseudoHostContext, PseudoSlotted, PseudoPart,
		PseudoLang, PseudoDir, PseudoState, PseudoToggle, PseudoHighlight:
		return true
	}
	return false
}

// IsLogicalCombination reports pseudo types whose argument is matched
// against the same element: :is(), :where(), :not() and nesting parent.
func (p PseudoType) IsLogicalCombination() bool {
	switch p {
	case PseudoIs, PseudoWhere, PseudoNot, PseudoParent:
		return true
	}
	return false
}

// IsNth reports structural pseudo-classes which depend on sibling position.
func (p PseudoType) IsNth() bool {
	switch p {
	case PseudoFirstOfType, PseudoLastOfType, PseudoOnlyOfType,
		PseudoNthChild, PseudoNthLastChild, PseudoNthOfType, PseudoNthLastOfType:
		return true
	}
	return false
}

// splitsCompound reports pseudo-elements which live in a different tree
// scope than their originating element, they start new compound joined with
// shadow relation.
func (p PseudoType) splitsCompound() (Relation, bool) {
	switch p {
	case PseudoSlotted:
		return RelationShadowSlot, true
	case PseudoPart:
		return RelationShadowPart, true
	case PseudoWebKitCustomElement, PseudoInternalElement, PseudoPlaceholder,
		PseudoFileSelectorButton, PseudoScrollbar:
		return RelationUAShadow, true
	}
	return RelationSubSelector, false
}
