package config

import (
	"fmt"

	"food-order-desk/models"

	"gorm.io/gorm"
)

// SeedDemo inserts a demo restaurant and menu unless a restaurant record
// already exists.
func SeedDemo(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.RestaurantInfo{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count restaurant info: %w", err)
	}
	if count > 0 {
		return nil
	}

	daily := models.DaySchedule{Open: "11:00", Close: "23:00"}
	return db.Transaction(func(tx *gorm.DB) error {
		info := models.RestaurantInfo{
			Name:    "Casa do Sabor",
			Phone:   "+55 11 4000-0000",
			Address: "Rua Augusta, 1200",
			OpeningHours: models.OpeningHours{
				"monday": daily, "tuesday": daily, "wednesday": daily, "thursday": daily,
				"friday": daily, "saturday": daily, "sunday": {Open: "12:00", Close: "22:00"},
			},
			DeliveryArea:                 []string{"Consolação", "Bela Vista", "Jardins"},
			DeliveryFee:                  5,
			MinOrderValue:                20,
			EstimatedDeliveryTimeMinutes: 40,
		}
		if err := tx.Create(&info).Error; err != nil {
			return err
		}

		mains := models.MenuCategory{Name: "Pratos", DisplayOrder: 1, IsActive: true}
		drinks := models.MenuCategory{Name: "Bebidas", DisplayOrder: 2, IsActive: true}
		if err := tx.Create(&[]*models.MenuCategory{&mains, &drinks}).Error; err != nil {
			return err
		}

		items := []models.MenuItem{
			{CategoryID: mains.ID, Name: "Feijoada", Description: "Black bean stew with pork", Price: 42.9, IsAvailable: true, DisplayOrder: 1},
			{CategoryID: mains.ID, Name: "Moqueca", Description: "Fish stew with coconut milk", Price: 55, IsAvailable: true, DisplayOrder: 2,
				Allergens: []string{"fish"}},
			{CategoryID: mains.ID, Name: "Pizza Margherita", Description: "Tomato, mozzarella and basil", Price: 25, IsAvailable: true, DisplayOrder: 3,
				Ingredients: []string{"tomato", "mozzarella", "basil"}, Allergens: []string{"gluten", "lactose"}},
			{CategoryID: drinks.ID, Name: "Guaraná", Description: "350ml can", Price: 6.5, IsAvailable: true, DisplayOrder: 1},
			{CategoryID: drinks.ID, Name: "Suco de Laranja", Description: "Fresh orange juice", Price: 9, IsAvailable: true, DisplayOrder: 2},
		}
		return tx.Create(&items).Error
	})
}
