package simulation

import (
	"github.com/m-rau5/mas-book-auction/auctiontypes"
	"github.com/m-rau5/mas-book-auction/buyer"
	"github.com/m-rau5/mas-book-auction/strategies"
	"github.com/m-rau5/mas-book-auction/util"
)

// CanonicalBuyers is the four-strategy roster the simulation boots with:
// one buyer per strategy, overlapping interests so most auctions draw more
// than one bidder, budgets sampled fresh per run.
func CanonicalBuyers() []buyer.Profile {
	return []buyer.Profile{
		{
			Name:     "cautious-buyer",
			Genres:   []string{"Fantasy", "Sci-Fi"},
			Authors:  []string{"Tolkien"},
			Strategy: strategies.Cautious,
			Budget:   util.RandomBudgetIn(1000, 3000),
		},
		{
			Name:     "eager-buyer",
			Genres:   []string{"Fantasy", "Horror"},
			Authors:  []string{"King"},
			Strategy: strategies.AlwaysFirst,
			Budget:   util.RandomBudgetIn(1000, 3000),
		},
		{
			Name:     "steady-buyer",
			Genres:   []string{"Sci-Fi", "Mystery"},
			Authors:  []string{"Asimov"},
			Strategy: strategies.Periodic,
			Budget:   util.RandomBudgetIn(1000, 3000),
		},
		{
			Name:     "sniper-buyer",
			Genres:   []string{"Mystery", "Horror"},
			Authors:  []string{"Christie"},
			Strategy: strategies.OneShot,
			Budget:   util.RandomBudgetIn(1000, 3000),
		},
	}
}

// SampleCatalog covers all three protocols with items every roster buyer
// can afford and at least two buyers want.
func SampleCatalog() []auctiontypes.ItemMetadata {
	return []auctiontypes.ItemMetadata{
		{
			Title:         "The Silmarillion",
			Author:        "Tolkien",
			Genre:         "Fantasy",
			Kind:          auctiontypes.English,
			StartingPrice: 120,
		},
		{
			Title:         "Foundation",
			Author:        "Asimov",
			Genre:         "Sci-Fi",
			Kind:          auctiontypes.Dutch,
			StartingPrice: 200,
		},
		{
			Title:         "And Then There Were None",
			Author:        "Christie",
			Genre:         "Mystery",
			Kind:          auctiontypes.Blind,
			StartingPrice: 80,
		},
	}
}
