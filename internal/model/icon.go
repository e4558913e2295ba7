package model

// Icon is a category icon shown next to payments and tasks.
type Icon string

const (
	IconBill      Icon = "Bill"
	IconShopping  Icon = "Shopping"
	IconWork      Icon = "Work"
	IconHome      Icon = "Home"
	IconHealth    Icon = "Health"
	IconGym       Icon = "Gym"
	IconStudy     Icon = "Study"
	IconSocial    Icon = "Social"
	IconOther     Icon = "Other"
	IconFood      Icon = "Food"
	IconTransport Icon = "Transport"
	IconGift      Icon = "Gift"
	IconStream    Icon = "Stream"
	IconTravel    Icon = "Travel"
	IconPet       Icon = "Pet"
	IconTech      Icon = "Tech"
	IconUtility   Icon = "Utility"
	IconBeauty    Icon = "Beauty"
	IconCoffee    Icon = "Coffee"
	IconMusic     Icon = "Music"
	IconCamera    Icon = "Camera"
	IconHeart     Icon = "Heart"
	IconMail      Icon = "Mail"
	IconMapPin    Icon = "MapPin"
	IconBrush     Icon = "Brush"
	IconMoon      Icon = "Moon"
	IconSun       Icon = "Sun"
	IconGamepad   Icon = "Gamepad"
	IconBike      Icon = "Bike"
	IconWallet    Icon = "Wallet"
	IconCalendar  Icon = "Calendar"
	IconShirt     Icon = "Shirt"
	IconScissors  Icon = "Scissors"
	IconHammer    Icon = "Hammer"
)

var iconEmoji = map[Icon]string{
	IconBill:      "🧾",
	IconShopping:  "🛒",
	IconWork:      "💼",
	IconHome:      "🏠",
	IconHealth:    "🩺",
	IconGym:       "🏋️",
	IconStudy:     "🎓",
	IconSocial:    "👥",
	IconOther:     "🏷️",
	IconFood:      "🍽️",
	IconTransport: "🚌",
	IconGift:      "🎁",
	IconStream:    "📺",
	IconTravel:    "✈️",
	IconPet:       "🐾",
	IconTech:      "💻",
	IconUtility:   "💡",
	IconBeauty:    "💄",
	IconCoffee:    "☕",
	IconMusic:     "🎵",
	IconCamera:    "📷",
	IconHeart:     "❤️",
	IconMail:      "✉️",
	IconMapPin:    "📍",
	IconBrush:     "🖌️",
	IconMoon:      "🌙",
	IconSun:       "☀️",
	IconGamepad:   "🎮",
	IconBike:      "🚲",
	IconWallet:    "👛",
	IconCalendar:  "📅",
	IconShirt:     "👕",
	IconScissors:  "✂️",
	IconHammer:    "🔨",
}

func (i Icon) Valid() bool {
	_, ok := iconEmoji[i]
	return ok
}

// Emoji returns a printable stand-in for the icon.
func (i Icon) Emoji() string {
	if e, ok := iconEmoji[i]; ok {
		return e
	}
	return iconEmoji[IconOther]
}

// NormalizeIcon maps an empty or unknown icon name to fallback.
func NormalizeIcon(name string, fallback Icon) Icon {
	icon := Icon(name)
	if icon.Valid() {
		return icon
	}
	return fallback
}
