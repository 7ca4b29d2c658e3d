package validators

import "go.mongodb.org/mongo-driver/bson"

var AirlineValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"code",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"code": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 3,
			},
		},
	},
}
