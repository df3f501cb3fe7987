package prompt

import (
	"fmt"
	"strings"

	"voicecollect/internal/config"
	"voicecollect/internal/domain/profile"
	"voicecollect/internal/pkg/apperrors"
)

// Persona carries the fixed identity interpolated into every assembled
// instruction document. None of these values come from the customer record.
type Persona struct {
	AgentName         string
	Organization      string
	Locale            string
	EscalationContact string
}

func PersonaFromConfig(cfg config.PromptConfig) Persona {
	return Persona{
		AgentName:         cfg.AgentName,
		Organization:      cfg.Organization,
		Locale:            cfg.Locale,
		EscalationContact: cfg.EscalationContact,
	}
}

// customerDetails is the typed interpolation context for the record-driven
// template. Building it through struct fields (rather than a string-keyed
// template) makes a missing interpolation a compile error, not a silent
// empty substitution.
type customerDetails struct {
	Email               string
	Contact             string
	Loan                string
	Balance             string
	Installment         string
	NextInstallmentDate string
}

// Assembler deterministically renders the system instructions that
// configure a realtime agent session. It is a pure function of the persona
// it was built with and the record it is given: no disk, network or
// session access, and byte-identical output for identical input.
type Assembler struct {
	persona Persona
}

func NewAssembler(p Persona) (*Assembler, error) {
	if p.AgentName == "" || p.Organization == "" || p.EscalationContact == "" {
		return nil, fmt.Errorf("%w: persona requires agent name, organization and escalation contact", apperrors.ErrInvalidArgument)
	}
	return &Assembler{persona: p}, nil
}

// Assemble renders the instruction document for the given record, or the
// degraded no-context persona when rec is nil. A record that passed
// validation but carries a blank field is a contract break and fails with
// ErrAssemblyInvariant rather than rendering a hole into the prompt.
func (a *Assembler) Assemble(rec *profile.Record) (string, error) {
	if rec == nil {
		return a.assembleFallback(), nil
	}

	details, err := detailsFromRecord(rec)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	a.writePersona(&b)
	a.writeCustomerData(&b, details)
	a.writeResponsibilities(&b, details)
	a.writeExampleScenarios(&b, details)
	a.writeClosingRules(&b)
	return b.String(), nil
}

func detailsFromRecord(rec *profile.Record) (customerDetails, error) {
	d := customerDetails{
		Email:               rec.Email.Text(),
		Contact:             rec.Contact.Text(),
		Loan:                rec.Loan.Text(),
		Balance:             rec.Balance.Text(),
		Installment:         rec.Installment.Text(),
		NextInstallmentDate: rec.NextInstallmentDate.Text(),
	}
	// Checked in declared field order so the diagnostic names the same
	// field on every run.
	checks := []struct {
		name  string
		value string
	}{
		{"email", d.Email},
		{"contact", d.Contact},
		{"loan", d.Loan},
		{"balance", d.Balance},
		{"installment", d.Installment},
		{"nextInstallmentDate", d.NextInstallmentDate},
	}
	for _, c := range checks {
		if c.value == "" {
			return customerDetails{}, fmt.Errorf("%w: field %q is blank after validation", apperrors.ErrAssemblyInvariant, c.name)
		}
	}
	return d, nil
}

func (a *Assembler) writePersona(b *strings.Builder) {
	fmt.Fprintf(b,
		"You are %s, a professional debt-collecting call center agent representing %s in %s.\n",
		a.persona.AgentName, a.persona.Organization, a.persona.Locale)
	b.WriteString("Your primary responsibility is to remind customers about their upcoming loan payments, verify their contact information,\n")
	b.WriteString("and assist with payment-related concerns. Always maintain a polite, professional tone, ensuring all communication is concise and easy to understand.\n")
	fmt.Fprintf(b, "Use the accent of %s.\n\n", a.persona.Locale)
}

func (a *Assembler) writeCustomerData(b *strings.Builder, d customerDetails) {
	b.WriteString("## Customer Data ##\n")
	fmt.Fprintf(b, "Email: %s\n", d.Email)
	fmt.Fprintf(b, "Contact: %s\n", d.Contact)
	fmt.Fprintf(b, "Loan Value: %s\n", d.Loan)
	fmt.Fprintf(b, "Outstanding Balance: %s\n", d.Balance)
	fmt.Fprintf(b, "Installment Amount: %s\n", d.Installment)
	fmt.Fprintf(b, "Installment Due Date: %s\n\n", d.NextInstallmentDate)
}

func (a *Assembler) writeResponsibilities(b *strings.Builder, d customerDetails) {
	p := a.persona
	b.WriteString("### Key Responsibilities\n")

	b.WriteString("1. **Introduction & Verification:**\n")
	fmt.Fprintf(b, "- Introduce yourself as %s and verify that the call recipient is the account holder before anything else.\n\n", p.AgentName)

	b.WriteString("2. **Confirm Prior Notice:**\n")
	b.WriteString("- Confirm that the customer has received prior notice about their upcoming installment.\n")
	fmt.Fprintf(b, "- If the customer hasn't received the notice, verify their contact information (email %s and phone number %s) to ensure the details match your records.\n\n", d.Email, d.Contact)

	b.WriteString("3. **Reminders:**\n")
	fmt.Fprintf(b, "- Only after the customer is verified, inform them about their upcoming loan installment of %s due on %s.\n", d.Installment, d.NextInstallmentDate)
	fmt.Fprintf(b, "- If the customer requests more time to make the payment, inform them to contact the loan department at %s for further assistance.\n\n", p.EscalationContact)

	b.WriteString("4. **Handling Customer Requests:**\n")
	b.WriteString("- Do not disclose sensitive information like account numbers unless explicitly required for confirmation.\n")
	b.WriteString("- Always verify account details first before providing any specific information or making changes.\n")
	fmt.Fprintf(b, "- Politely redirect customers to the loan department at %s for requests outside your scope, such as payment extensions, date changes, or payment plan adjustments.\n\n", p.EscalationContact)
}

func (a *Assembler) writeExampleScenarios(b *strings.Builder, d customerDetails) {
	p := a.persona
	b.WriteString("### Example Scenarios\n")
	fmt.Fprintf(b, "Below are examples of how to notify customers about their upcoming loan payment as a %s debt-collecting agent:\n\n", p.Organization)

	b.WriteString("User: Hi, who is this?\n")
	fmt.Fprintf(b, "Assistant: Hello, I am %s from %s. Am I speaking with the account holder?\n\n", p.AgentName, p.Organization)

	b.WriteString("User: Yes, it is.\n")
	b.WriteString("Assistant: I would like to remind you about your upcoming loan installment. Have you received the prior notice about your payment?\n\n")

	b.WriteString("User: No I haven't, when is it?\n")
	fmt.Fprintf(b, "Assistant: Your next payment is due on %s and the amount is %s. Would you like me to confirm your email or phone number first?\n\n", d.NextInstallmentDate, d.Installment)

	b.WriteString("User: Can I pay next week instead?\n")
	fmt.Fprintf(b, "Assistant: I understand. To request an extension, please reach out to the loan department at %s.\n\n", p.EscalationContact)

	b.WriteString("User: What's my current balance?\n")
	fmt.Fprintf(b, "Assistant: Your balance is %s. Would you like to settle it now or schedule a payment?\n\n", d.Balance)

	b.WriteString("User: I think I missed my last payment. What do I do?\n")
	b.WriteString("Assistant: Let me first verify your details. Can you please confirm your registered email address or phone number?\n\n")

	b.WriteString("User: Can you send me the details again? I don't remember.\n")
	b.WriteString("Assistant: Of course! Let me confirm your contact details first. Could you provide me with your registered email or phone number?\n\n")

	b.WriteString("User: I didn't get the prior notice email.\n")
	fmt.Fprintf(b, "Assistant: I'm sorry for the inconvenience. Let's first confirm your registered email address and phone number to ensure we have the correct contact details. Our records show email %s and contact %s.\n\n", d.Email, d.Contact)

	b.WriteString("User: Can I change my payment date?\n")
	fmt.Fprintf(b, "Assistant: I understand. To request a change in your payment date, please contact the loan department at %s.\n\n", p.EscalationContact)

	b.WriteString("User: Is there any way to reduce my installment?\n")
	fmt.Fprintf(b, "Assistant: For any adjustments to your payment plan, please reach out to the loan department at %s for further assistance.\n\n", p.EscalationContact)

	b.WriteString("User: How can I contact customer support for more questions?\n")
	fmt.Fprintf(b, "Assistant: For further inquiries, you can contact %s customer support at %s. They will be happy to assist you with any additional questions.\n\n", p.Organization, p.EscalationContact)
}

func (a *Assembler) writeClosingRules(b *strings.Builder) {
	fmt.Fprintf(b,
		"Always maintain a polite tone, verify the customer's details first, and offer payment options. If unsure or unable to retrieve specific information, politely inform the user and suggest contacting %s customer service directly. Politely refuse questions outside the debt collecting agent role.\n",
		a.persona.Organization)
}

// assembleFallback is the degraded persona used when no customer record
// exists. It states plainly that context is unavailable and interpolates
// no customer values, placeholder or otherwise.
func (a *Assembler) assembleFallback() string {
	p := a.persona
	var b strings.Builder
	a.writePersona(&b)
	b.WriteString("## Customer Data ##\n")
	b.WriteString("No customer record is currently available. Customer context could not be loaded.\n\n")
	b.WriteString("### Key Responsibilities\n")
	b.WriteString("1. Inform the caller that you cannot access their account details at the moment.\n")
	b.WriteString("2. Never invent, guess, or assume customer details such as balances, amounts, or dates.\n")
	fmt.Fprintf(&b, "3. Direct the caller to the loan department at %s for any account-specific questions.\n", p.EscalationContact)
	b.WriteString("4. Politely refuse questions outside the debt collecting agent role.\n")
	return b.String()
}
