package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

const userCollection = "users"

// UserRepository persists users in MongoDB. All tenant-scoped queries filter
// by tenant_id inside the query itself; a cross-tenant id simply does not
// match and surfaces as ErrUserNotFound.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureUserIndexes creates the unique compound (email, tenant_id) index and
// the lookup indexes the token flows rely on.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(userCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "tenant_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "password_reset_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "email_verification_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "invitation_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}

type mongoRefreshToken struct {
	Token      string    `bson:"token"`
	CreatedAt  time.Time `bson:"created_at"`
	ExpiresAt  time.Time `bson:"expires_at"`
	DeviceInfo string    `bson:"device_info"`
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	FirstName    string             `bson:"first_name"`
	LastName     string             `bson:"last_name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`

	Avatar     string `bson:"avatar,omitempty"`
	Phone      string `bson:"phone,omitempty"`
	Department string `bson:"department,omitempty"`
	Title      string `bson:"title,omitempty"`
	Bio        string `bson:"bio,omitempty"`

	TenantID string `bson:"tenant_id"`

	Role        string   `bson:"role"`
	Permissions []string `bson:"permissions,omitempty"`

	Status          string `bson:"status"`
	IsEmailVerified bool   `bson:"is_email_verified"`

	LastLogin     time.Time `bson:"last_login,omitempty"`
	LastActivity  time.Time `bson:"last_activity,omitempty"`
	SessionCount  int       `bson:"session_count"`
	LoginAttempts int       `bson:"login_attempts"`
	LockUntil     time.Time `bson:"lock_until,omitempty"`

	RefreshTokens []mongoRefreshToken `bson:"refresh_tokens,omitempty"`

	PasswordChangedAt time.Time `bson:"password_changed_at,omitempty"`

	PasswordResetHash        string    `bson:"password_reset_hash,omitempty"`
	PasswordResetExpires     time.Time `bson:"password_reset_expires,omitempty"`
	EmailVerificationHash    string    `bson:"email_verification_hash,omitempty"`
	EmailVerificationExpires time.Time `bson:"email_verification_expires,omitempty"`
	InvitationHash           string    `bson:"invitation_hash,omitempty"`
	InvitationExpires        time.Time `bson:"invitation_expires,omitempty"`

	InvitedBy string `bson:"invited_by,omitempty"`
	CreatedBy string `bson:"created_by,omitempty"`
	UpdatedBy string `bson:"updated_by,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toMongoUser(u *domain.User) (mongoUser, error) {
	doc := mongoUser{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Avatar:       u.Avatar,
		Phone:        u.Phone,
		Department:   u.Department,
		Title:        u.Title,
		Bio:          u.Bio,
		TenantID:     u.TenantID,
		Role:         string(u.Role),

		Status:          string(u.Status),
		IsEmailVerified: u.IsEmailVerified,

		LastLogin:     u.LastLogin,
		LastActivity:  u.LastActivity,
		SessionCount:  u.SessionCount,
		LoginAttempts: u.LoginAttempts,
		LockUntil:     u.LockUntil,

		PasswordChangedAt: u.PasswordChangedAt,

		PasswordResetHash:        u.PasswordResetHash,
		PasswordResetExpires:     u.PasswordResetExpires,
		EmailVerificationHash:    u.EmailVerificationHash,
		EmailVerificationExpires: u.EmailVerificationExpires,
		InvitationHash:           u.InvitationHash,
		InvitationExpires:        u.InvitationExpires,

		InvitedBy: u.InvitedBy,
		CreatedBy: u.CreatedBy,
		UpdatedBy: u.UpdatedBy,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	for _, p := range u.Permissions {
		doc.Permissions = append(doc.Permissions, string(p))
	}
	for _, rt := range u.RefreshTokens {
		doc.RefreshTokens = append(doc.RefreshTokens, mongoRefreshToken(rt))
	}
	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return doc, domain.ErrUserNotFound
		}
		doc.ID = oid
	}
	return doc, nil
}

func (m mongoUser) toDomain() *domain.User {
	user := &domain.User{
		ID:           m.ID.Hex(),
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Avatar:       m.Avatar,
		Phone:        m.Phone,
		Department:   m.Department,
		Title:        m.Title,
		Bio:          m.Bio,
		TenantID:     m.TenantID,
		Role:         domain.Role(m.Role),

		Status:          domain.UserStatus(m.Status),
		IsEmailVerified: m.IsEmailVerified,

		LastLogin:     m.LastLogin,
		LastActivity:  m.LastActivity,
		SessionCount:  m.SessionCount,
		LoginAttempts: m.LoginAttempts,
		LockUntil:     m.LockUntil,

		PasswordChangedAt: m.PasswordChangedAt,

		PasswordResetHash:        m.PasswordResetHash,
		PasswordResetExpires:     m.PasswordResetExpires,
		EmailVerificationHash:    m.EmailVerificationHash,
		EmailVerificationExpires: m.EmailVerificationExpires,
		InvitationHash:           m.InvitationHash,
		InvitationExpires:        m.InvitationExpires,

		InvitedBy: m.InvitedBy,
		CreatedBy: m.CreatedBy,
		UpdatedBy: m.UpdatedBy,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, p := range m.Permissions {
		user.Permissions = append(user.Permissions, domain.Permission(p))
	}
	for _, rt := range m.RefreshTokens {
		user.RefreshTokens = append(user.RefreshTokens, domain.RefreshToken(rt))
	}
	return user
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc, err := toMongoUser(user)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByIDAndTenant(ctx context.Context, id, tenantID string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID})
}

func (r *UserRepository) FindByEmailAndTenant(ctx context.Context, email, tenantID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "tenant_id": tenantID})
}

func (r *UserRepository) FindByTokenHash(ctx context.Context, kind ports.TokenKind, hash string, now time.Time) (*domain.User, error) {
	var hashField, expiresField string
	switch kind {
	case ports.TokenPasswordReset:
		hashField, expiresField = "password_reset_hash", "password_reset_expires"
	case ports.TokenEmailVerification:
		hashField, expiresField = "email_verification_hash", "email_verification_expires"
	case ports.TokenInvitation:
		hashField, expiresField = "invitation_hash", "invitation_expires"
	default:
		return nil, domain.ErrUserNotFound
	}

	return r.findOne(ctx, bson.M{
		hashField:    hash,
		expiresField: bson.M{"$gt": now},
	})
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc, err := toMongoUser(user)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) TouchActivity(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"last_activity": at}})
	if err != nil {
		return fmt.Errorf("touch activity: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id, tenantID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "tenant_id": tenantID})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}

func (r *UserRepository) DeleteMany(ctx context.Context, ids []string, tenantID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{
		"_id":       bson.M{"$in": objectIDs(ids)},
		"tenant_id": tenantID,
	})
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *UserRepository) UpdateMany(ctx context.Context, ids []string, tenantID string, set ports.BulkSet) (int64, error) {
	fields := bson.M{"updated_at": time.Now().UTC()}
	if set.Status != "" {
		fields["status"] = string(set.Status)
	}
	if set.Role != "" {
		fields["role"] = string(set.Role)
	}
	if set.UpdatedBy != "" {
		fields["updated_by"] = set.UpdatedBy
	}

	res, err := r.coll.UpdateMany(ctx, bson.M{
		"_id":       bson.M{"$in": objectIDs(ids)},
		"tenant_id": tenantID,
	}, bson.M{"$set": fields})
	if err != nil {
		return 0, fmt.Errorf("update users: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *UserRepository) CountAdmins(ctx context.Context, ids []string, tenantID string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"_id":       bson.M{"$in": objectIDs(ids)},
		"tenant_id": tenantID,
		"role":      string(domain.RoleAdmin),
	})
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (r *UserRepository) List(ctx context.Context, tenantID string, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	query := bson.M{"tenant_id": tenantID}
	if filter.Role != "" {
		query["role"] = string(filter.Role)
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Department != "" {
		query["department"] = filter.Department
	}
	if filter.Search != "" {
		regex := bson.M{"$regex": filter.Search, "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"first_name": regex},
			bson.M{"last_name": regex},
			bson.M{"email": regex},
			bson.M{"department": regex},
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	sortField := "created_at"
	if filter.SortBy != "" {
		sortField = filter.SortBy
	}
	order := 1
	if filter.SortDesc {
		order = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: order}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	users, err := r.findAll(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) FindByRole(ctx context.Context, tenantID string, role domain.Role, page, limit int) ([]*domain.User, int64, error) {
	query := bson.M{"tenant_id": tenantID, "role": string(role)}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count users by role: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}

	users, err := r.findAll(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) findAll(ctx context.Context, query bson.M, opts *options.FindOptions) ([]*domain.User, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	for cursor.Next(ctx) {
		var doc mongoUser
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// statusRoleCount is one row of the grouped aggregation used by the stats
// queries.
type statusRoleCount struct {
	ID struct {
		Role   string `bson:"role"`
		Status string `bson:"status"`
	} `bson:"_id"`
	Count int64 `bson:"count"`
}

func (r *UserRepository) grouped(ctx context.Context, tenantID string) ([]statusRoleCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"tenant_id": tenantID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"role": "$role", "status": "$status"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate users: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []statusRoleCount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode aggregation: %w", err)
	}
	return rows, nil
}

func (r *UserRepository) Stats(ctx context.Context, tenantID string) (*ports.UserStats, error) {
	rows, err := r.grouped(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	stats := &ports.UserStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch domain.UserStatus(row.ID.Status) {
		case domain.StatusActive:
			stats.Active += row.Count
		case domain.StatusPending:
			stats.Pending += row.Count
		case domain.StatusInactive:
			stats.Inactive += row.Count
		}
		switch domain.Role(row.ID.Role) {
		case domain.RoleAdmin:
			stats.Admins += row.Count
		case domain.RoleManager:
			stats.Managers += row.Count
		case domain.RoleUser:
			stats.Regular += row.Count
		}
	}
	return stats, nil
}

func (r *UserRepository) CountByRole(ctx context.Context, tenantID string) (map[domain.Role]int64, error) {
	rows, err := r.grouped(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Role]int64)
	for _, row := range rows {
		counts[domain.Role(row.ID.Role)] += row.Count
	}
	return counts, nil
}

func (r *UserRepository) RoleStats(ctx context.Context, tenantID string) ([]ports.RoleStatusCount, error) {
	rows, err := r.grouped(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	byRole := make(map[domain.Role]*ports.RoleStatusCount)
	for _, row := range rows {
		role := domain.Role(row.ID.Role)
		agg, ok := byRole[role]
		if !ok {
			agg = &ports.RoleStatusCount{Role: role}
			byRole[role] = agg
		}
		agg.Total += row.Count
		switch domain.UserStatus(row.ID.Status) {
		case domain.StatusActive:
			agg.Active += row.Count
		case domain.StatusPending:
			agg.Pending += row.Count
		}
	}

	out := make([]ports.RoleStatusCount, 0, len(byRole))
	for _, agg := range byRole {
		out = append(out, *agg)
	}
	return out, nil
}
