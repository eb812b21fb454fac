package layout

import (
	"fmt"

	"github.com/jonathan/resume-studio/internal/types"
)

// Icon names a pictogram from the fixed icon set
type Icon string

// Icons used by the templates
const (
	IconNone          Icon = ""
	IconGraduationCap Icon = "graduation-cap"
	IconBriefcase     Icon = "briefcase"
	IconCode          Icon = "code"
	IconAward         Icon = "award"
	IconPlus          Icon = "plus"
	IconMail          Icon = "mail"
	IconPhone         Icon = "phone"
	IconMapPin        Icon = "map-pin"
)

var sectionIcons = map[types.SectionKind]Icon{
	types.SectionEducation:    IconGraduationCap,
	types.SectionExperience:   IconBriefcase,
	types.SectionSkills:       IconCode,
	types.SectionAchievements: IconAward,
	types.SectionCustom:       IconPlus,
}

// IconFor returns the icon of a section kind
func IconFor(kind types.SectionKind) Icon {
	if icon, ok := sectionIcons[kind]; ok {
		return icon
	}
	return IconPlus
}

// 24x24 stroke outlines
var iconShapes = map[Icon]string{
	IconGraduationCap: `<path d="M22 10v6"/><path d="M2 10l10-5 10 5-10 5z"/><path d="M6 12v5c3 3 9 3 12 0v-5"/>`,
	IconBriefcase:     `<rect x="2" y="7" width="20" height="14" rx="2" ry="2"/><path d="M16 21V5a2 2 0 0 0-2-2h-4a2 2 0 0 0-2 2v16"/>`,
	IconCode:          `<polyline points="16 18 22 12 16 6"/><polyline points="8 6 2 12 8 18"/>`,
	IconAward:         `<circle cx="12" cy="8" r="6"/><path d="M15.5 12.9L17 22l-5-3-5 3 1.5-9.1"/>`,
	IconPlus:          `<path d="M5 12h14"/><path d="M12 5v14"/>`,
	IconMail:          `<rect x="2" y="4" width="20" height="16" rx="2"/><path d="M22 7l-8.97 5.7a1.94 1.94 0 0 1-2.06 0L2 7"/>`,
	IconPhone:         `<path d="M22 16.92v3a2 2 0 0 1-2.18 2 19.79 19.79 0 0 1-8.63-3.07 19.5 19.5 0 0 1-6-6 19.79 19.79 0 0 1-3.07-8.67A2 2 0 0 1 4.11 2h3a2 2 0 0 1 2 1.72 12.84 12.84 0 0 0 .7 2.81 2 2 0 0 1-.45 2.11L8.09 9.91a16 16 0 0 0 6 6l1.27-1.27a2 2 0 0 1 2.11-.45 12.84 12.84 0 0 0 2.81.7A2 2 0 0 1 22 16.92z"/>`,
	IconMapPin:        `<path d="M20 10c0 6-8 12-8 12s-8-6-8-12a8 8 0 0 1 16 0z"/><circle cx="12" cy="10" r="3"/>`,
}

// IconSVG returns standalone SVG markup for an icon. Stroke paint is carried by
// a group element so that consumers which ignore root attributes still see it.
// size is the rendered width and height; stroke may be "currentColor".
func IconSVG(icon Icon, size float64, stroke string) (string, error) {
	shape, ok := iconShapes[icon]
	if !ok {
		return "", fmt.Errorf("unknown icon %q", icon)
	}
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 24 24">`+
			`<g fill="none" stroke="%s" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">%s</g></svg>`,
		size, size, stroke, shape,
	), nil
}
