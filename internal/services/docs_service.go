package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"rutabus/internal/domain/models"
	"rutabus/internal/repositories"
	"rutabus/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the e-ticket PDF for an issued ticket.
type DocsService struct {
	Tickets   repositories.TicketStore
	RequestID string
}

func (s DocsService) GenerateETicket(ctx context.Context, ticketID string) ([]byte, string, error) {
	ticket, err := s.Tickets.ByID(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("ticket_id=%s", ticketID))
	return buildETicketPDF(ticket)
}

func buildETicketPDF(t models.Ticket) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Boleto Electrónico", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOLETO ELECTRONICO")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Pasajero     : %s", safe(t.PassengerName, "-")),
		fmt.Sprintf("DNI          : %s", safe(t.PassengerDNI, "-")),
		fmt.Sprintf("Ruta         : %s -> %s", safe(t.Origin, "-"), safe(t.Destination, "-")),
		fmt.Sprintf("Salida       : %s", safe(t.DepartureLabel, "-")),
		fmt.Sprintf("Asiento      : %d", t.SeatNumber),
		fmt.Sprintf("Precio       : %s", utils.FormatSoles(t.PriceCents)),
		fmt.Sprintf("Estado       : %s", string(t.Status)),
		fmt.Sprintf("Comprado     : %s", t.PurchasedAt.Format("2006-01-02 15:04")),
		fmt.Sprintf("Codigo       : %s", t.ID),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Nota: este boleto es valido para 1 pasajero (1 asiento). Presentalo junto con tu DNI al abordar.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("BOLETO_%s_%d.pdf", safeFilenamePart(t.PassengerName), t.SeatNumber)
	return buf.Bytes(), filename, nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func safeFilenamePart(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "boleto"
	}
	return b.String()
}
