package model

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Appointment struct {
	ID        string            `json:"id" yaml:"id"`
	Doctor    string            `json:"doctor" yaml:"doctor"`
	Specialty string            `json:"specialty" yaml:"specialty"`
	Date      string            `json:"date" yaml:"date"` // YYYY-MM-DD
	Time      string            `json:"time" yaml:"time"`
	Location  string            `json:"location" yaml:"location"`
	Status    AppointmentStatus `json:"status" yaml:"status"`
}

type MedicalRecord struct {
	ID          string       `json:"id" yaml:"id"`
	Type        string       `json:"type" yaml:"type"`
	Date        string       `json:"date" yaml:"date"`
	Provider    string       `json:"provider" yaml:"provider"`
	Description string       `json:"description" yaml:"description"`
	Notes       string       `json:"notes,omitempty" yaml:"notes,omitempty"` // markdown
	Status      RecordStatus `json:"status" yaml:"status"`
}

type Medication struct {
	ID           string           `json:"id" yaml:"id"`
	Name         string           `json:"name" yaml:"name"`
	Dosage       string           `json:"dosage" yaml:"dosage"`
	Frequency    string           `json:"frequency" yaml:"frequency"`
	Time         string           `json:"time" yaml:"time"`
	StartDate    string           `json:"start_date" yaml:"start_date"`
	EndDate      string           `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Instructions string           `json:"instructions" yaml:"instructions"` // markdown
	Status       MedicationStatus `json:"status" yaml:"status"`
	RefillDate   string           `json:"refill_date,omitempty" yaml:"refill_date,omitempty"`
}

type HealthMetric struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	Status string `json:"status" yaml:"status"` // normal | elevated
}

type PersonalInfo struct {
	Name             string `json:"name" yaml:"name"`
	Email            string `json:"email" yaml:"email"`
	Phone            string `json:"phone" yaml:"phone"`
	DateOfBirth      string `json:"date_of_birth" yaml:"date_of_birth"`
	Address          string `json:"address" yaml:"address"`
	EmergencyContact string `json:"emergency_contact" yaml:"emergency_contact"`
}

type MedicalInfo struct {
	BloodType    string `json:"blood_type" yaml:"blood_type"`
	Allergies    string `json:"allergies" yaml:"allergies"`
	Conditions   string `json:"conditions" yaml:"conditions"`
	PrimaryCare  string `json:"primary_care" yaml:"primary_care"`
	LastPhysical string `json:"last_physical" yaml:"last_physical"`
	Insurance    string `json:"insurance" yaml:"insurance"`
}

type Profile struct {
	UserID   string       `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Personal PersonalInfo `json:"personal" yaml:"personal"`
	Medical  MedicalInfo  `json:"medical" yaml:"medical"`
}
