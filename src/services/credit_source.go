package services

import (
	"database/sql"
	"errors"

	"github.com/username/finsight/backend/src/model"
)

// UserCreditScoreSource reads the self-reported credit score from the users
// table. A user without a stored score yields (nil, nil); the scorer treats
// that as the explicit unavailable state.
type UserCreditScoreSource struct {
	DB *sql.DB
}

func (s UserCreditScoreSource) CreditScore(userID int64) (*int, error) {
	user, err := model.GetUserByID(s.DB, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.CreditScore.Valid {
		return nil, nil
	}
	score := int(user.CreditScore.Int64)
	return &score, nil
}
