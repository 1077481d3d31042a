package milestone

import (
	"time"

	"github.com/jwebster45206/route-agent/pkg/state"
)

// DefaultRoute returns the opening-game storyline route, from power-on to
// the first gym badge, with its checkpoint metadata. Budgets are elapsed
// time to reach each checkpoint from the start of the run. Callers may
// supply their own route instead.
func DefaultRoute() ([]Milestone, []Checkpoint) {
	milestones := []Milestone{
		{
			ID:          "GAME_RUNNING",
			Description: "Complete title sequence and begin the game",
			Kind:        KindStoryFlag,
			Flag:        "GAME_RUNNING",
			Position:    10,
		},
		{
			ID:          "INTRO_CUTSCENE_COMPLETE",
			Description: "Exit the moving van and finish the intro cutscene",
			Kind:        KindStoryFlag,
			Flag:        "INTRO_CUTSCENE_COMPLETE",
			Position:    20,
			Prereqs:     []string{"GAME_RUNNING"},
		},
		{
			ID:          "PLAYER_HOUSE_ENTERED",
			Description: "Enter the player's house for the first time",
			Kind:        KindLocation,
			MapID:       "LITTLEROOT_TOWN_PLAYERS_HOUSE_1F",
			Position:    30,
			Prereqs:     []string{"INTRO_CUTSCENE_COMPLETE"},
		},
		{
			ID:          "PLAYER_BEDROOM",
			Description: "Go upstairs to the player's bedroom",
			Kind:        KindLocation,
			MapID:       "LITTLEROOT_TOWN_PLAYERS_HOUSE_2F",
			Position:    40,
			Prereqs:     []string{"PLAYER_HOUSE_ENTERED"},
		},
		{
			ID:          "CLOCK_SET",
			Description: "Set the wall clock in the bedroom",
			Kind:        KindStoryFlag,
			Flag:        "CLOCK_SET",
			Position:    50,
			Prereqs:     []string{"PLAYER_BEDROOM"},
		},
		{
			ID:          "ROUTE_101",
			Description: "Travel north to Route 101 and trigger the professor's cutscene",
			Kind:        KindLocation,
			MapID:       "ROUTE101",
			Position:    60,
			Prereqs:     []string{"CLOCK_SET"},
		},
		{
			ID:           "STARTER_CHOSEN",
			Description:  "Choose a starter and receive the first party member",
			Kind:         KindPartyState,
			MinPartySize: 1,
			Position:     70,
			Prereqs:      []string{"ROUTE_101"},
		},
		{
			ID:          "BIRCH_LAB_VISITED",
			Description: "Return to the professor's lab and receive the pokedex",
			Kind:        KindLocation,
			MapID:       "LITTLEROOT_TOWN_PROFESSOR_BIRCHS_LAB",
			Position:    80,
			Prereqs:     []string{"STARTER_CHOSEN"},
		},
		{
			ID:          "OLDALE_TOWN",
			Description: "Travel north through Route 101 to Oldale Town",
			Kind:        KindLocation,
			MapID:       "OLDALE_TOWN",
			Position:    90,
			Prereqs:     []string{"BIRCH_LAB_VISITED"},
		},
		{
			ID:          "ROUTE_102",
			Description: "Head west through Route 102 toward Petalburg",
			Kind:        KindLocation,
			MapID:       "ROUTE102",
			Position:    100,
			Prereqs:     []string{"OLDALE_TOWN"},
		},
		{
			ID:          "PETALBURG_CITY",
			Description: "Arrive in Petalburg City",
			Kind:        KindLocation,
			MapID:       "PETALBURG_CITY",
			Position:    110,
			Prereqs:     []string{"ROUTE_102"},
		},
		{
			ID:          "DAD_FIRST_MEETING",
			Description: "Meet Dad at the Petalburg gym and finish the tutorial battle",
			Kind:        KindStoryFlag,
			Flag:        "DAD_FIRST_MEETING",
			Position:    120,
			Prereqs:     []string{"PETALBURG_CITY"},
		},
		{
			ID:          "RUSTBORO_CITY",
			Description: "Cross Route 104 and the woods to reach Rustboro City",
			Kind:        KindLocation,
			MapID:       "RUSTBORO_CITY",
			Position:    130,
			Prereqs:     []string{"DAD_FIRST_MEETING"},
		},
		{
			ID:          "FIRST_BADGE",
			Description: "Defeat the Rustboro gym leader and earn the first badge",
			Kind:        KindCounter,
			Counter:     "BADGES",
			Threshold:   1,
			Position:    140,
			Prereqs:     []string{"RUSTBORO_CITY"},
		},
	}

	checkpoints := []Checkpoint{
		{
			MilestoneID: "GAME_RUNNING",
			Name:        "Game Start",
			TimeBudget:  2 * time.Minute,
			Notes:       "Mash A through the naming screens and intro",
		},
		{
			MilestoneID: "INTRO_CUTSCENE_COMPLETE",
			Name:        "Moving Van Exit",
			Location:    "MOVING_VAN",
			Coords:      &state.Coord{X: 5, Y: 3},
			TimeBudget:  4 * time.Minute,
			Notes:       "Move RIGHT to exit the van",
		},
		{
			MilestoneID: "PLAYER_HOUSE_ENTERED",
			Name:        "Player House 1F",
			Location:    "LITTLEROOT_TOWN_PLAYERS_HOUSE_1F",
			TimeBudget:  6 * time.Minute,
		},
		{
			MilestoneID: "PLAYER_BEDROOM",
			Name:        "Player House 2F",
			Location:    "LITTLEROOT_TOWN_PLAYERS_HOUSE_2F",
			TimeBudget:  8 * time.Minute,
		},
		{
			MilestoneID: "CLOCK_SET",
			Name:        "Clock Set",
			Location:    "LITTLEROOT_TOWN_PLAYERS_HOUSE_2F",
			Coords:      &state.Coord{X: 5, Y: 1},
			KeyItems:    []string{"Clock Set"},
			TimeBudget:  10 * time.Minute,
			Notes:       "Face the wall clock and press A, then head back downstairs",
		},
		{
			MilestoneID: "ROUTE_101",
			Name:        "Route 101",
			Location:    "ROUTE101",
			TimeBudget:  14 * time.Minute,
			Notes:       "Exit the house and go north out of town",
		},
		{
			MilestoneID:      "STARTER_CHOSEN",
			Name:             "Get Starter",
			Location:         "ROUTE101",
			RecommendedParty: []string{"Mudkip"},
			KeyItems:         []string{"Mudkip"},
			TimeBudget:       18 * time.Minute,
			Notes:            "Mudkip holds up best against the first two gyms",
		},
		{
			MilestoneID:      "BIRCH_LAB_VISITED",
			Name:             "Birch's Lab",
			Location:         "LITTLEROOT_TOWN_PROFESSOR_BIRCHS_LAB",
			RecommendedParty: []string{"Mudkip"},
			KeyItems:         []string{"Pokedex", "Pokeballs x5"},
			TimeBudget:       25 * time.Minute,
		},
		{
			MilestoneID:      "OLDALE_TOWN",
			Name:             "Oldale Town",
			Location:         "OLDALE_TOWN",
			RecommendedParty: []string{"Mudkip"},
			TimeBudget:       32 * time.Minute,
			Notes:            "Skip optional wild encounters where possible",
		},
		{
			MilestoneID:      "ROUTE_102",
			Name:             "Route 102",
			Location:         "ROUTE102",
			RecommendedParty: []string{"Mudkip"},
			TimeBudget:       40 * time.Minute,
		},
		{
			MilestoneID:      "PETALBURG_CITY",
			Name:             "Petalburg City",
			Location:         "PETALBURG_CITY",
			RecommendedParty: []string{"Mudkip"},
			TimeBudget:       48 * time.Minute,
			Notes:            "The local gym is the fifth badge; skip it for now",
		},
		{
			MilestoneID:      "DAD_FIRST_MEETING",
			Name:             "Petalburg Gym",
			Location:         "PETALBURG_CITY_GYM",
			RecommendedParty: []string{"Mudkip"},
			TimeBudget:       55 * time.Minute,
			Notes:            "Required story event, then leave",
		},
		{
			MilestoneID:      "RUSTBORO_CITY",
			Name:             "Rustboro City",
			Location:         "RUSTBORO_CITY",
			RecommendedParty: []string{"Mudkip"},
			KeyItems:         []string{"Devon Goods"},
			TimeBudget:       80 * time.Minute,
			Notes:            "The woods grunt fight is unavoidable",
		},
		{
			MilestoneID:      "FIRST_BADGE",
			Name:             "First Badge",
			Location:         "RUSTBORO_CITY_GYM",
			RecommendedParty: []string{"Mudkip Lv14+"},
			KeyItems:         []string{"Stone Badge", "TM39 Rock Tomb"},
			TimeBudget:       100 * time.Minute,
			Notes:            "Water moves are super effective against the whole gym",
		},
	}

	return milestones, checkpoints
}
