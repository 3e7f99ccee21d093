// Package model defines the butterfly, user and rating records and their
// conversion to and from store records.
package model

import (
	"fmt"
	"strconv"

	"github.com/roach88/butterflies/internal/store"
)

// Record field names, matching the persisted data file.
const (
	FieldID          = "id"
	FieldCommonName  = "commonName"
	FieldSpecies     = "species"
	FieldArticle     = "article"
	FieldUsername    = "username"
	FieldButterflyID = "butterflyid"
	FieldUserID      = "userid"
	FieldRating      = "rating"
	FieldRatingKey   = "ratingkey"
)

// MinRating and MaxRating bound the rating scale.
const (
	MinRating = 0
	MaxRating = 5
)

// Butterfly is a butterfly species entry.
type Butterfly struct {
	ID         string `json:"id"`
	CommonName string `json:"commonName"`
	Species    string `json:"species"`
	Article    string `json:"article"`
}

// User is a registered rater.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Rating is one user's rating of one butterfly.
type Rating struct {
	ID          string `json:"id"`
	ButterflyID string `json:"butterflyid"`
	RatingKey   string `json:"ratingkey"`
	UserID      string `json:"userid"`
	Rating      string `json:"rating"`
}

// RatingKey derives the legacy composite key for a (butterfly, user) pair.
//
// The key is kept for compatibility with existing data files. It is not
// collision-free ("B1"+"1U" == "B11"+"U"), so uniqueness is enforced on the
// two id fields instead.
func RatingKey(butterflyID, userID string) string {
	return "key" + butterflyID + userID
}

// ParseRating converts a rating string to its numeric value.
// Only the single-digit strings "0" through "5" are accepted.
func ParseRating(s string) (int, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("rating %q: must be one of 0-5", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < MinRating || n > MaxRating {
		return 0, fmt.Errorf("rating %q: must be one of 0-5", s)
	}
	return n, nil
}

// ToRecord converts the butterfly to a store record.
func (b Butterfly) ToRecord() store.Record {
	return store.Record{
		FieldID:         b.ID,
		FieldCommonName: b.CommonName,
		FieldSpecies:    b.Species,
		FieldArticle:    b.Article,
	}
}

// ButterflyFromRecord converts a store record to a Butterfly.
func ButterflyFromRecord(r store.Record) Butterfly {
	return Butterfly{
		ID:         r[FieldID],
		CommonName: r[FieldCommonName],
		Species:    r[FieldSpecies],
		Article:    r[FieldArticle],
	}
}

// ToRecord converts the user to a store record.
func (u User) ToRecord() store.Record {
	return store.Record{
		FieldID:       u.ID,
		FieldUsername: u.Username,
	}
}

// UserFromRecord converts a store record to a User.
func UserFromRecord(r store.Record) User {
	return User{
		ID:       r[FieldID],
		Username: r[FieldUsername],
	}
}

// ToRecord converts the rating to a store record.
func (r Rating) ToRecord() store.Record {
	return store.Record{
		FieldID:          r.ID,
		FieldButterflyID: r.ButterflyID,
		FieldRatingKey:   r.RatingKey,
		FieldUserID:      r.UserID,
		FieldRating:      r.Rating,
	}
}

// RatingFromRecord converts a store record to a Rating.
func RatingFromRecord(r store.Record) Rating {
	return Rating{
		ID:          r[FieldID],
		ButterflyID: r[FieldButterflyID],
		RatingKey:   r[FieldRatingKey],
		UserID:      r[FieldUserID],
		Rating:      r[FieldRating],
	}
}

// LessRating orders rating strings numerically. Unparseable values sort
// after every valid rating and keep their relative order.
func LessRating(a, b string) bool {
	na, errA := ParseRating(a)
	nb, errB := ParseRating(b)
	switch {
	case errA != nil:
		return false
	case errB != nil:
		return true
	default:
		return na < nb
	}
}
