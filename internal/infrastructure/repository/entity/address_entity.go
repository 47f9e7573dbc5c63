package entity

// MongoSavedAddressDoc is a tenant's saved address book entry
type MongoSavedAddressDoc struct {
	ID              string `bson:"_id"`
	TenantID        string `bson:"tenantId"`
	Type            string `bson:"type"`
	IsDefault       bool   `bson:"isDefault"`
	MongoAddressDoc `bson:",inline"`
}
