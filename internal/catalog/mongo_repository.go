package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_foodcourt/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type restaurantDocument struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description"`
	Image       string    `bson:"image"`
	Cuisine     string    `bson:"cuisine"`
	IsOpen      bool      `bson:"is_open"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type optionDocument struct {
	ID    string               `bson:"id"`
	Name  string               `bson:"name"`
	Price primitive.Decimal128 `bson:"price"`
	IsVeg bool                 `bson:"is_veg"`
}

type groupDocument struct {
	ID            string           `bson:"id"`
	Name          string           `bson:"name"`
	Required      bool             `bson:"required"`
	MaxSelections int              `bson:"max_selections"`
	Options       []optionDocument `bson:"options"`
}

// Prices are stored as Decimal128 so they round-trip without float drift.
type menuItemDocument struct {
	ItemID         string               `bson:"item_id"`
	RestaurantID   string               `bson:"restaurant_id"`
	Name           string               `bson:"name"`
	Description    string               `bson:"description"`
	Price          primitive.Decimal128 `bson:"price"`
	Image          string               `bson:"image"`
	IsVeg          bool                 `bson:"is_veg"`
	SpiceLevel     int                  `bson:"spice_level"`
	Category       string               `bson:"category"`
	Available      bool                 `bson:"available"`
	Customizations []groupDocument      `bson:"customizations"`
	UpdatedAt      time.Time            `bson:"updated_at"`
}

// MongoRepository stores restaurants and menu items in two collections.
type MongoRepository struct {
	restaurants *mongo.Collection
	menuItems   *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		restaurants: db.Collection("restaurants"),
		menuItems:   db.Collection("menu_items"),
	}
}

func (m *MongoRepository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.restaurants.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []restaurantDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode restaurants: %w", err)
	}

	restaurants := make([]domain.Restaurant, 0, len(docs))
	for _, d := range docs {
		restaurants = append(restaurants, d.toDomain())
	}
	return restaurants, nil
}

func (m *MongoRepository) GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error) {
	var doc restaurantDocument
	err := m.restaurants.FindOne(ctx, bson.M{"_id": restaurantID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	r := doc.toDomain()
	return &r, nil
}

func (m *MongoRepository) UpsertRestaurant(ctx context.Context, restaurant domain.Restaurant) error {
	doc := restaurantDocument{
		ID:          restaurant.ID,
		Name:        restaurant.Name,
		Description: restaurant.Description,
		Image:       restaurant.Image,
		Cuisine:     restaurant.Cuisine,
		IsOpen:      restaurant.IsOpen,
		UpdatedAt:   time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := m.restaurants.ReplaceOne(ctx, bson.M{"_id": restaurant.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert restaurant: %w", err)
	}
	return nil
}

func (m *MongoRepository) GetMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := m.menuItems.Find(ctx, bson.M{"restaurant_id": restaurantID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []menuItemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode menu: %w", err)
	}

	items := make([]domain.MenuItem, 0, len(docs))
	for _, d := range docs {
		item, err := d.toDomain()
		if err != nil {
			return nil, fmt.Errorf("menu item %s: %w", d.ItemID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *MongoRepository) UpsertMenuItem(ctx context.Context, item domain.MenuItem) error {
	doc, err := newMenuItemDocument(item)
	if err != nil {
		return err
	}
	doc.UpdatedAt = time.Now()

	filter := bson.M{"restaurant_id": item.RestaurantID, "item_id": item.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.menuItems.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert menu item: %w", err)
	}
	return nil
}

func (m *MongoRepository) SetAvailability(ctx context.Context, restaurantID, itemID string, available bool) error {
	filter := bson.M{"restaurant_id": restaurantID, "item_id": itemID}
	update := bson.M{
		"$set": bson.M{
			"available":  available,
			"updated_at": time.Now(),
		},
	}

	result, err := m.menuItems.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set availability: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "restaurant_id", Value: 1}, {Key: "item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "restaurant_id", Value: 1}, {Key: "category", Value: 1}},
		},
	}

	if _, err := m.menuItems.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Ping reports whether the database answers.
func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.restaurants.Database().Client().Ping(ctx, nil)
}

func (d restaurantDocument) toDomain() domain.Restaurant {
	return domain.Restaurant{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Image:       d.Image,
		Cuisine:     d.Cuisine,
		IsOpen:      d.IsOpen,
	}
}

func newMenuItemDocument(item domain.MenuItem) (menuItemDocument, error) {
	price, err := toDecimal128(item.Price)
	if err != nil {
		return menuItemDocument{}, err
	}

	groups := make([]groupDocument, 0, len(item.Customizations))
	for _, g := range item.Customizations {
		opts := make([]optionDocument, 0, len(g.Options))
		for _, o := range g.Options {
			p, err := toDecimal128(o.Price)
			if err != nil {
				return menuItemDocument{}, err
			}
			opts = append(opts, optionDocument{ID: o.ID, Name: o.Name, Price: p, IsVeg: o.IsVeg})
		}
		groups = append(groups, groupDocument{
			ID:            g.ID,
			Name:          g.Name,
			Required:      g.Required,
			MaxSelections: g.MaxSelections,
			Options:       opts,
		})
	}

	return menuItemDocument{
		ItemID:         item.ID,
		RestaurantID:   item.RestaurantID,
		Name:           item.Name,
		Description:    item.Description,
		Price:          price,
		Image:          item.Image,
		IsVeg:          item.IsVeg,
		SpiceLevel:     item.SpiceLevel,
		Category:       item.Category,
		Available:      item.Available,
		Customizations: groups,
	}, nil
}

func (d menuItemDocument) toDomain() (domain.MenuItem, error) {
	price, err := fromDecimal128(d.Price)
	if err != nil {
		return domain.MenuItem{}, err
	}

	var groups []domain.CustomizationGroup
	for _, g := range d.Customizations {
		opts := make([]domain.CustomizationOption, 0, len(g.Options))
		for _, o := range g.Options {
			p, err := fromDecimal128(o.Price)
			if err != nil {
				return domain.MenuItem{}, err
			}
			opts = append(opts, domain.CustomizationOption{ID: o.ID, Name: o.Name, Price: p, IsVeg: o.IsVeg})
		}
		groups = append(groups, domain.CustomizationGroup{
			ID:            g.ID,
			Name:          g.Name,
			Required:      g.Required,
			MaxSelections: g.MaxSelections,
			Options:       opts,
		})
	}

	return domain.MenuItem{
		ID:             d.ItemID,
		RestaurantID:   d.RestaurantID,
		Name:           d.Name,
		Description:    d.Description,
		Price:          price,
		Image:          d.Image,
		IsVeg:          d.IsVeg,
		SpiceLevel:     d.SpiceLevel,
		Category:       d.Category,
		Available:      d.Available,
		Customizations: groups,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("invalid price %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid stored price %s: %w", v, err)
	}
	return d, nil
}
