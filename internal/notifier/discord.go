package notifier

import (
	"fmt"
	"log"

	"github.com/YeonghyeonKO/waffle-sugang/internal/models"
	"github.com/bwmarrin/discordgo"
)

type Notifier interface {
	NotifyEnrollment(user models.User, seminar models.Seminar, role string) error
	NotifyDrop(user models.User, seminar models.Seminar) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyEnrollment(user models.User, seminar models.Seminar, role string) error {
	message := fmt.Sprintf("📚 **Enrollment Update**\n**User:** %s\n**Seminar:** %s\n**Role:** %s",
		user.Username,
		seminar.Name,
		role,
	)
	return n.send(message)
}

func (n *DiscordNotifier) NotifyDrop(user models.User, seminar models.Seminar) error {
	message := fmt.Sprintf("📚 **Enrollment Update**\n**User:** %s\n**Seminar:** %s\n**Status:** dropped the seminar 😢",
		user.Username,
		seminar.Name,
	)
	return n.send(message)
}

func (n *DiscordNotifier) send(message string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
