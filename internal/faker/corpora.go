package faker

// The corpora below are intentionally small, fixed word lists rather than a
// pulled-in dataset: spec.md's faker generators only need to look plausible,
// not exhaustive, and a fixed list keeps output reproducible across Go
// versions without embedding a data file.

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Amara", "Yusuf", "Priya", "Wei",
	"Fatima", "Hiroshi", "Ingrid", "Diego", "Aiko", "Noah",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson",
	"Thomas", "Taylor", "Moore", "Jackson", "Martin", "Okafor", "Nilsson", "Tanaka",
	"Kowalski", "Dubois", "Mehta", "Silva", "Novak",
}

var domains = []string{
	"example.com", "example.org", "example.net", "mail.test", "corp.test", "inbox.test",
}

var words = []string{
	"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit",
	"sed", "do", "eiusmod", "tempor", "incididunt", "ut", "labore", "et", "dolore",
	"magna", "aliqua", "enim", "minim", "veniam", "quis", "nostrud", "exercitation",
}

var cities = []string{
	"Springfield", "Riverside", "Fairview", "Georgetown", "Clinton", "Greenville",
	"Bristol", "Salem", "Madison", "Arlington", "Oakland", "Lakeview",
}

var countries = []string{
	"Canada", "Brazil", "Germany", "Nigeria", "Japan", "India", "Sweden", "Chile",
	"Kenya", "Vietnam", "Poland", "Portugal",
}

var companySuffixes = []string{
	"Group", "Holdings", "Labs", "Systems", "Partners", "Works", "Collective", "Dynamics",
}

var streetSuffixes = []string{
	"St", "Ave", "Blvd", "Dr", "Ln", "Way", "Ct", "Rd",
}

var tlds = []string{"com", "org", "net", "io"}
