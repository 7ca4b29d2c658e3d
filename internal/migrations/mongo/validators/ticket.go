package validators

import "go.mongodb.org/mongo-driver/bson"

var TicketValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"flight_id",
			"user_email",
			"passenger_no",
			"class",
			"source",
			"destination",
			"seat_no",
			"payment_status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"flight_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"user_email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"passenger_no": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  10,
			},

			"class": bson.M{
				"bsonType": "string",
				"enum": []string{
					"economy",
					"business",
					"first",
				},
			},

			"food_preference": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Veg",
					"Non-Veg",
					"Vegan",
					"None",
				},
			},

			"contact_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{1,14}$`,
			},

			"source": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"destination": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 50,
			},

			"seat_no": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 5,
			},

			"transaction_id": bson.M{
				"bsonType": "string",
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Pending",
					"Paid",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
