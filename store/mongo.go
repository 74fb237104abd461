package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared with the dashboard that reads the same database.
const (
	collectionReadings = "sensorData"
	collectionFarms    = "farms"
	collectionImages   = "image_hashes"
	collectionUsers    = "users"
)

// MongoStore is the document-store backend.
type MongoStore struct {
	client   *mongo.Client
	readings *mongo.Collection
	farms    *mongo.Collection
	images   *mongo.Collection
	users    *mongo.Collection
}

// OpenMongo connects and pings within 10 seconds so a dead database fails startup
// instead of hanging it.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:   client,
		readings: db.Collection(collectionReadings),
		farms:    db.Collection(collectionFarms),
		images:   db.Collection(collectionImages),
		users:    db.Collection(collectionUsers),
	}

	_, err = s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create user indexes: %w", err)
	}
	return s, nil
}

type readingDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Temperature float64            `bson:"temperature"`
	Humidity    float64            `bson:"humidity"`
	Soil        float64            `bson:"soil"`
	Rain        float64            `bson:"rain"`
	Timestamp   time.Time          `bson:"timestamp"`
	FarmID      interface{}        `bson:"farmId"`
}

type farmDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	WalletAddress string             `bson:"walletAddress"`
	Phone         string             `bson:"phone,omitempty"`
	Location      string             `bson:"locationCoordinates,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

type imageDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ReportedHash   string             `bson:"reportedHash"`
	CalculatedHash string             `bson:"calculatedHash"`
	IsMatch        *bool              `bson:"isMatch"`
	SizeBytes      int64              `bson:"sizeBytes"`
	ImagePath      string             `bson:"imagePath"`
	Timestamp      time.Time          `bson:"timestamp"`
}

type userDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	Role     string             `bson:"role"`
}

// storedID keeps farm references as ObjectIDs when they look like one, so documents
// written here line up with the ones the dashboard writes.
func storedID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// idMatch matches a reference stored either as an ObjectID or as a plain string.
func idMatch(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"$in": bson.A{oid, id}}
	}
	return id
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func (s *MongoStore) InsertReading(ctx context.Context, r *models.SensorReading) (string, error) {
	doc := readingDoc{
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Soil:        r.Soil,
		Rain:        r.Rain,
		Timestamp:   r.Timestamp,
		FarmID:      storedID(r.FarmID),
	}
	result, err := s.readings.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	r.ID = idString(result.InsertedID)
	return r.ID, nil
}

func (s *MongoStore) FindReadings(ctx context.Context, farmID string, limit int64) ([]models.SensorReading, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.readings.Find(ctx, bson.M{"farmId": idMatch(farmID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []readingDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.SensorReading, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.SensorReading{
			ID:          d.ID.Hex(),
			FarmID:      idString(d.FarmID),
			Temperature: d.Temperature,
			Humidity:    d.Humidity,
			Soil:        d.Soil,
			Rain:        d.Rain,
			Timestamp:   d.Timestamp,
		})
	}
	return out, nil
}

func (s *MongoStore) InsertFarm(ctx context.Context, f *models.Farm) (string, error) {
	doc := farmDoc{
		Name:          f.Name,
		WalletAddress: f.WalletAddress,
		Phone:         f.Phone,
		Location:      f.Location,
		CreatedAt:     f.CreatedAt,
	}
	if f.ID != "" {
		oid, err := primitive.ObjectIDFromHex(f.ID)
		if err != nil {
			return "", fmt.Errorf("farm id %q is not an ObjectID: %w", f.ID, err)
		}
		doc.ID = oid
	}
	result, err := s.farms.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	f.ID = idString(result.InsertedID)
	return f.ID, nil
}

func (s *MongoStore) FindFarm(ctx context.Context, id string) (*models.Farm, error) {
	return s.findFarm(ctx, bson.M{"_id": idMatch(id)})
}

func (s *MongoStore) FindFarmByName(ctx context.Context, name string) (*models.Farm, error) {
	return s.findFarm(ctx, bson.M{"name": name})
}

func (s *MongoStore) findFarm(ctx context.Context, filter bson.M) (*models.Farm, error) {
	var doc farmDoc
	if err := s.farms.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &models.Farm{
		ID:            doc.ID.Hex(),
		Name:          doc.Name,
		WalletAddress: doc.WalletAddress,
		Phone:         doc.Phone,
		Location:      doc.Location,
		CreatedAt:     doc.CreatedAt,
	}, nil
}

func (s *MongoStore) InsertImage(ctx context.Context, img *models.ImageRecord) (string, error) {
	doc := imageDoc{
		ReportedHash:   img.ReportedHash,
		CalculatedHash: img.CalculatedHash,
		IsMatch:        img.IsMatch,
		SizeBytes:      img.SizeBytes,
		ImagePath:      img.ImagePath,
		Timestamp:      img.Timestamp,
	}
	result, err := s.images.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	img.ID = idString(result.InsertedID)
	return img.ID, nil
}

func (s *MongoStore) FindImages(ctx context.Context, limit int64) ([]models.ImageRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.images.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []imageDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.ImageRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.ImageRecord{
			ID:             d.ID.Hex(),
			ReportedHash:   d.ReportedHash,
			CalculatedHash: d.CalculatedHash,
			IsMatch:        d.IsMatch,
			SizeBytes:      d.SizeBytes,
			ImagePath:      d.ImagePath,
			Timestamp:      d.Timestamp,
		})
	}
	return out, nil
}

func (s *MongoStore) InsertUser(ctx context.Context, u *models.User) (string, error) {
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	result, err := s.users.InsertOne(ctx, userDoc{
		Username: u.Username,
		Email:    u.Email,
		Password: u.Password,
		Role:     u.Role,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	u.ID = idString(result.InsertedID)
	return u.ID, nil
}

func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &models.User{
		ID:       doc.ID.Hex(),
		Username: doc.Username,
		Email:    doc.Email,
		Password: doc.Password,
		Role:     doc.Role,
	}, nil
}

func (s *MongoStore) UpdateUserRole(ctx context.Context, email, role string) error {
	result, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
