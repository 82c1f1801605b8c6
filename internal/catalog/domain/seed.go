package domain

// CategorySeed is a predefined category installed at bootstrap.
type CategorySeed struct {
	Name  string
	Icon  string
	Color string
}

// DefaultCategories is the predefined category list, in sort order.
// The Name doubles as the categoryType marker so bootstrap can tell
// seeded categories from user-created ones.
var DefaultCategories = []CategorySeed{
	{Name: "Mobility / Warm-up", Icon: "figure.run", Color: "orange"},
	{Name: "Closed Guard", Icon: "shield.fill", Color: "blue"},
	{Name: "Sit-up Guard", Icon: "chair.fill", Color: "blue"},
	{Name: "Butterfly Guard", Icon: "leaf.fill", Color: "blue"},
	{Name: "Spider Guard", Icon: "ant.fill", Color: "blue"},
	{Name: "De La Riva", Icon: "figure.stand", Color: "blue"},
	{Name: "X-Guard", Icon: "xmark", Color: "blue"},
	{Name: "Half Guard", Icon: "figure.wave", Color: "blue"},
	{Name: "Top Position", Icon: "arrow.up.circle.fill", Color: "green"},
	{Name: "Back Control", Icon: "arrow.uturn.backward.circle.fill", Color: "green"},
	{Name: "Leg Locks", Icon: "figure.strengthtraining.traditional", Color: "red"},
	{Name: "Passing", Icon: "arrow.right.circle.fill", Color: "purple"},
	{Name: "Takedowns", Icon: "figure.wrestling", Color: "brown"},
	{Name: "Submissions", Icon: "hand.raised.fill", Color: "red"},
	{Name: "Escapes", Icon: "arrow.up.forward", Color: "teal"},
	{Name: "Concepts", Icon: "brain.head.profile", Color: "indigo"},
}

// PredefinedInstructors feeds tag-name suggestions in the UI. It is not
// an enumeration: arbitrary tag names are always allowed.
var PredefinedInstructors = []string{
	"John Danaher",
	"Gordon Ryan",
	"Lachlan Giles",
	"Craig Jones",
	"Mikey Musumeci",
	"Marcelo Garcia",
	"Andre Galvao",
	"Keenan Cornelius",
	"Bernardo Faria",
	"Roger Gracie",
}
