package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/repositories"
)

// SessionRepo wraps the interview-session collection.
type SessionRepo struct{ col *mongo.Collection }

// NewSessionRepo connects to the collection and ensures the indexes the
// dashboard and the timeout sweeper query on.
func NewSessionRepo(c *Client) (*SessionRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	colName := os.Getenv("INTERVIEWS_COLLECTION")
	if colName == "" {
		colName = "interview_sessions"
	}

	col := db.Collection(colName)
	r := &SessionRepo{col: col}

	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "lastActivityTime", Value: 1}}},
	})

	return r, nil
}

func (r *SessionRepo) Create(ctx context.Context, session *models.InterviewSession) error {
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, session); err != nil {
		return storageErr("insert session", err)
	}
	return nil
}

// Get retries once on transient errors: the load-path timeout check
// depends on this read and a single blip should not block a session.
func (r *SessionRepo) Get(ctx context.Context, id string) (*models.InterviewSession, error) {
	session, err := r.getOnce(ctx, id)
	if err != nil && !errors.Is(err, repositories.ErrSessionNotFound) {
		session, err = r.getOnce(ctx, id)
	}
	return session, err
}

func (r *SessionRepo) getOnce(ctx context.Context, id string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrSessionNotFound
	}
	if err != nil {
		return nil, storageErr("get session", err)
	}
	return &session, nil
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, storageErr("list sessions", err)
	}
	defer cur.Close(ctx)

	var out []models.InterviewSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, storageErr("decode sessions", err)
	}
	return out, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr("delete session", err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) UpdateStatus(ctx context.Context, id string, patch repositories.StatusPatch) error {
	set := bson.M{
		"status":    patch.Status,
		"updatedAt": time.Now().UTC(),
	}
	if patch.StartTime != nil {
		set["startTime"] = *patch.StartTime
	}
	if patch.LastActivityTime != nil {
		set["lastActivityTime"] = *patch.LastActivityTime
	}
	if patch.EndTime != nil {
		set["endTime"] = *patch.EndTime
	}
	if patch.IsTimedOut {
		set["isTimedOut"] = true
		set["timeoutReason"] = patch.TimeoutReason
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return storageErr("update status", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"lastActivityTime": at, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return storageErr("touch session", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) AppendResponse(ctx context.Context, id string, response models.Response) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"responses": response},
		"$set": bson.M{
			"lastActivityTime": response.Timestamp,
			"updatedAt":        time.Now().UTC(),
		},
	})
	if err != nil {
		return storageErr("append response", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrSessionNotFound
	}
	return nil
}

// SetResponseFeedback relies on the positional operator, which updates
// the first array element matching the filter; later duplicates of the
// same questionIndex are left alone.
func (r *SessionRepo) SetResponseFeedback(ctx context.Context, id string, questionIndex int, feedback string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "responses.questionIndex": questionIndex},
		bson.M{"$set": bson.M{
			"responses.$.feedback": feedback,
			"updatedAt":            time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, storageErr("set feedback", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *SessionRepo) AppendInteraction(ctx context.Context, id string, interaction models.Interaction) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"aiInteractions": interaction},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return storageErr("append interaction", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) ListActiveBefore(ctx context.Context, cutoff time.Time) ([]models.InterviewSession, error) {
	filter := bson.M{
		"status": bson.M{"$in": []models.SessionStatus{models.StatusScheduled, models.StatusInProgress}},
		"$or": []bson.M{
			{"lastActivityTime": bson.M{"$lt": cutoff}},
			{"lastActivityTime": bson.M{"$exists": false}, "startTime": bson.M{"$lt": cutoff}},
		},
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, storageErr("list stale sessions", err)
	}
	defer cur.Close(ctx)

	var out []models.InterviewSession
	if err := cur.All(ctx, &out); err != nil {
		return nil, storageErr("decode stale sessions", err)
	}
	return out, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, repositories.ErrStorageUnavailable, err)
}
