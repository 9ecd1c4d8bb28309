package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"platescout/internal/models"
)

func (a *App) dispatch(ctx context.Context, cmd, rest string) error {
	switch cmd {
	case "help":
		a.printHelp()
		return nil
	case "login":
		return a.cmdLogin(rest)
	case "logout":
		a.session.Clear()
		a.svc.Reset()
		fmt.Fprintln(a.out, "signed out")
		return nil
	case "venues":
		return a.cmdVenues(ctx)
	case "category":
		return a.cmdCategory(ctx, rest)
	case "offers":
		return a.cmdOffers(ctx)
	case "venue":
		return a.cmdVenue(ctx, rest)
	case "reviews":
		return a.cmdReviews(ctx, rest)
	case "myreviews":
		return a.cmdMyReviews(ctx)
	case "review":
		return a.cmdReview(ctx, rest)
	case "favs":
		return a.cmdFavs(ctx)
	case "fav":
		return a.svc.Favorites.Add(ctx, rest)
	case "unfav":
		return a.svc.Favorites.Remove(ctx, rest)
	case "profile":
		return a.cmdProfile(ctx)
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func (a *App) printHelp() {
	fmt.Fprint(a.out, `commands:
  login <id-token>            install a session token
  logout                      drop the session and reset caches
  venues                      list all venues
  category <food type>        list venues by category
  offers                      list venues with an active offer
  venue <id>                  show one venue
  reviews <venue id>          list a venue's reviews
  myreviews                   list my reviews
  review <venue id> <stars> <comment>
  favs                        list my favorite venue ids
  fav <venue id>              add a favorite
  unfav <venue id>            remove a favorite
  profile                     show my profile
  exit
`)
}

func (a *App) cmdLogin(token string) error {
	if token == "" {
		return fmt.Errorf("usage: login <id-token>")
	}
	if err := a.session.SetToken(token); err != nil {
		return err
	}
	// never leak cached data across accounts
	a.svc.Reset()
	fmt.Fprintln(a.out, "signed in")
	return nil
}

func (a *App) cmdVenues(ctx context.Context) error {
	vs, err := a.svc.Venues.Venues(ctx)
	if err != nil {
		return err
	}
	a.printVenues(vs)
	return nil
}

func (a *App) cmdCategory(ctx context.Context, category string) error {
	if category == "" {
		return fmt.Errorf("usage: category <food type>")
	}
	vs, err := a.svc.Venues.VenuesByCategory(ctx, category)
	if err != nil {
		return err
	}
	a.printVenues(vs)
	return nil
}

func (a *App) cmdOffers(ctx context.Context) error {
	vs, err := a.svc.Venues.VenuesWithOffer(ctx)
	if err != nil {
		return err
	}
	a.printVenues(vs)
	return nil
}

func (a *App) cmdVenue(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("usage: venue <id>")
	}
	v, err := a.svc.Venues.Venue(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %s (%s)  rating %.1f\n", v.ID, v.Name, v.Category, v.Rating)
	if v.Address != nil {
		fmt.Fprintf(a.out, "  %s\n", *v.Address)
	}
	if v.OpeningTime != nil && v.ClosingTime != nil {
		fmt.Fprintf(a.out, "  open %04d-%04d\n", *v.OpeningTime, *v.ClosingTime)
	}
	return nil
}

func (a *App) cmdReviews(ctx context.Context, venueID string) error {
	if venueID == "" {
		return fmt.Errorf("usage: reviews <venue id>")
	}
	revs, err := a.svc.Reviews.VenueReviews(ctx, venueID)
	if err != nil {
		return err
	}
	a.printReviews(ctx, revs)
	return nil
}

func (a *App) cmdMyReviews(ctx context.Context) error {
	revs, err := a.svc.Reviews.MyReviews(ctx)
	if err != nil {
		return err
	}
	a.printReviews(ctx, revs)
	return nil
}

func (a *App) cmdReview(ctx context.Context, rest string) error {
	venueID, rest, _ := strings.Cut(rest, " ")
	starsArg, comment, _ := strings.Cut(strings.TrimSpace(rest), " ")
	stars, err := strconv.Atoi(starsArg)
	if venueID == "" || err != nil {
		return fmt.Errorf("usage: review <venue id> <stars 1-5> <comment>")
	}

	rev, err := a.svc.Reviews.Create(ctx, &models.ReviewInput{
		VenueID: venueID,
		Stars:   stars,
		Comment: strings.TrimSpace(comment),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "review %s published\n", rev.ID)
	return nil
}

func (a *App) cmdFavs(ctx context.Context) error {
	ids, err := a.svc.Favorites.FavoriteVenueIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(a.out, id)
	}
	return nil
}

func (a *App) cmdProfile(ctx context.Context) error {
	u, err := a.svc.Users.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %s <%s>\n", u.ID, u.Name, u.Email)
	if u.Budget != nil {
		fmt.Fprintf(a.out, "  budget: %s\n", *u.Budget)
	}
	if u.Diet != nil {
		fmt.Fprintf(a.out, "  diet: %s\n", *u.Diet)
	}
	return nil
}

func (a *App) printVenues(vs []models.Venue) {
	for _, v := range vs {
		offer := ""
		if v.HasOffer {
			offer = "  [offer]"
		}
		fmt.Fprintf(a.out, "%s  %s (%s)  %.1f%s\n", v.ID, v.Name, v.Category, v.Rating, offer)
	}
}

func (a *App) printReviews(ctx context.Context, revs []models.Review) {
	ids := make([]string, 0, len(revs))
	for _, r := range revs {
		ids = append(ids, r.UserID)
	}
	names := map[string]string{}
	if sums, err := a.svc.Users.ProfileSummaries(ctx, ids); err == nil {
		for _, s := range sums {
			names[s.ID] = s.Name
		}
	}

	for _, r := range revs {
		name := names[r.UserID]
		if name == "" {
			name = r.UserID
		}
		fmt.Fprintf(a.out, "%s  %d★  %s  %s\n", r.CreatedAt.Format("2006-01-02"), r.Stars, name, r.Comment)
	}
}
