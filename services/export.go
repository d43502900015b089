package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"chatbot-admin-console/models"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ExportService produces Excel workbooks of a workspace's leads and
// appointments for download from the console.
type ExportService struct {
	db *mongo.Database
}

func NewExportService(db *mongo.Database) *ExportService {
	return &ExportService{db: db}
}

// ExportLeads builds an xlsx of all leads for the workspace, newest first.
func (es *ExportService) ExportLeads(ctx context.Context, workspaceID primitive.ObjectID, from, to time.Time) ([]byte, int, error) {
	filter := bson.M{"workspace_id": workspaceID}
	if dateRange := rangeFilter(from, to); dateRange != nil {
		filter["created_at"] = dateRange
	}

	cursor, err := es.db.Collection("leads").Find(ctx, filter,
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var leads []models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Name", "Phone", "Email", "Message", "Source", "Created At"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, lead := range leads {
		row := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), lead.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), lead.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), lead.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), lead.Message)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), lead.Source)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), lead.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(leads), nil
}

// ExportAppointments builds an xlsx of all appointments for the workspace.
func (es *ExportService) ExportAppointments(ctx context.Context, workspaceID primitive.ObjectID, from, to time.Time) ([]byte, int, error) {
	filter := bson.M{"workspace_id": workspaceID}
	if dateRange := rangeFilter(from, to); dateRange != nil {
		filter["scheduled_at"] = dateRange
	}

	cursor, err := es.db.Collection("appointments").Find(ctx, filter,
		options.Find().SetSort(bson.M{"scheduled_at": -1}))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var appointments []models.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Appointments"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Name", "Phone", "Email", "Service", "Scheduled At", "Status", "Created At"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIdx, appt := range appointments {
		row := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), appt.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), appt.Phone)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), appt.Email)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), appt.Service)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), appt.ScheduledAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), appt.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), appt.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(appointments), nil
}

func rangeFilter(from, to time.Time) bson.M {
	if from.IsZero() && to.IsZero() {
		return nil
	}
	r := bson.M{}
	if !from.IsZero() {
		r["$gte"] = from
	}
	if !to.IsZero() {
		r["$lte"] = to
	}
	return r
}
