package main

import (
	"github.com/rollstock-erp/internal/config"
	"github.com/rollstock-erp/internal/logger"
	"github.com/rollstock-erp/internal/models"

	"github.com/shopspring/decimal"
)

func measure(s string) models.Measure {
	m, err := models.NewMeasureFromString(s)
	if err != nil {
		return models.NewMeasure(decimal.Zero)
	}
	return m
}

func measurePtr(s string) *models.Measure {
	m := measure(s)
	return &m
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认操作员
	if err := models.InitDefaultOperator("", ""); err != nil {
		stdLog.Printf("Failed to init default operator: %v", err)
	}

	// 添加客户
	customers := []models.Customer{
		{Code: "CUST-001", Name: "华北印业", Contact: "王经理", Phone: "13800000001"},
		{Code: "CUST-002", Name: "东南包装", Contact: "李主管", Phone: "13800000002"},
	}
	customerIDs := map[string]uint{}
	for _, cust := range customers {
		var existing models.Customer
		if err := models.DB.Where("code = ?", cust.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cust).Error; err != nil {
				stdLog.Printf("Failed to create customer %s: %v", cust.Code, err)
				continue
			}
			stdLog.Printf("Created customer: %s", cust.Code)
			customerIDs[cust.Code] = cust.ID
		} else {
			stdLog.Printf("Customer already exists: %s", cust.Code)
			customerIDs[cust.Code] = existing.ID
		}
	}

	// 添加母卷库存
	units := []models.PrimaryUnit{
		{
			Barcode:         "JR2026090100001",
			MaterialType:    "双胶纸",
			BasisWeight:     measure("80"),
			Width:           measure("787"),
			TotalLength:     measure("6000"),
			RemainingLength: measure("6000"),
			BatchNo:         "B202609-01",
			WarehouseCode:   "WH-A",
		},
		{
			Barcode:         "JR2026090100002",
			MaterialType:    "双胶纸",
			BasisWeight:     measure("80"),
			Width:           measure("889"),
			TotalLength:     measure("6000"),
			RemainingLength: measure("6000"),
			BatchNo:         "B202609-01",
			WarehouseCode:   "WH-A",
		},
		{
			Barcode:         "JR2026090100003",
			MaterialType:    "铜版纸",
			BasisWeight:     measure("128"),
			Width:           measure("1092"),
			TotalLength:     measure("4500"),
			RemainingLength: measure("4500"),
			BatchNo:         "B202609-02",
			WarehouseCode:   "WH-B",
		},
	}
	for _, unit := range units {
		var existing models.PrimaryUnit
		if err := models.DB.Where("barcode = ?", unit.Barcode).First(&existing).Error; err != nil {
			if err := models.DB.Create(&unit).Error; err != nil {
				stdLog.Printf("Failed to create primary unit %s: %v", unit.Barcode, err)
			} else {
				stdLog.Printf("Created primary unit: %s", unit.Barcode)
			}
		} else {
			stdLog.Printf("Primary unit already exists: %s", unit.Barcode)
		}
	}

	// 添加示例订单
	if custID, ok := customerIDs["CUST-001"]; ok {
		var existing models.SalesOrder
		if err := models.DB.Where("order_no = ?", "SO-20260901-001").First(&existing).Error; err != nil {
			order := models.SalesOrder{
				OrderNo:    "SO-20260901-001",
				CustomerID: custID,
				LineItems: []models.OrderLineItem{
					{
						Position:         0,
						MaterialType:     "双胶纸",
						BasisWeight:      measurePtr("80"),
						Width:            measurePtr("787"),
						RequiredQuantity: 2,
					},
					{
						Position:         1,
						MaterialType:     "铜版纸",
						BasisWeight:      measurePtr("128"),
						Width:            measurePtr("1092"),
						RequiredQuantity: 1,
						UnitLength:       measurePtr("1500"),
					},
				},
			}
			if err := models.DB.Create(&order).Error; err != nil {
				stdLog.Printf("Failed to create sample order: %v", err)
			} else {
				stdLog.Printf("Created sample order: %s", order.OrderNo)
			}
		} else {
			stdLog.Printf("Sample order already exists: SO-20260901-001")
		}
	}

	stdLog.Println("Seed completed")
}
