// Interactive test client. Commands:
//
//	create <player> [mode] [timer]
//	join <room_id> <player>
//	mode <mode> [timer]
//	start
//	guess <name>
//	attr <attribute> <value>
//	skip
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wfunc/onepiecedle/network"
)

var msgNames = map[uint16]string{
	network.MsgTypeError:          "error",
	network.MsgTypeRoomJoined:     "room_joined",
	network.MsgTypePlayerJoined:   "player_joined",
	network.MsgTypeModeSet:        "mode_set",
	network.MsgTypeNewCharacter:   "new_character",
	network.MsgTypeTimerTick:      "timer_tick",
	network.MsgTypeCorrectGuess:   "correct_guess",
	network.MsgTypeIncorrectGuess: "incorrect_guess",
	network.MsgTypeScoreUpdate:    "score_update",
	network.MsgTypeGuessResult:    "guess_result",
	network.MsgTypeGameOver:       "game_over",
}

type state struct {
	roomID string
	player string
}

func send(c *websocket.Conn, msgID uint16, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.BinaryMessage, network.EncodePacket(msgID, data))
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	st := &state{}

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			packet, err := network.DecodePacket(message)
			if err != nil {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			name := msgNames[packet.MsgID]
			if name == "" {
				name = strconv.Itoa(int(packet.MsgID))
			}
			log.Printf("<- %s: %s", name, string(packet.Data))

			// Remember the room id from room_joined.
			if packet.MsgID == network.MsgTypeRoomJoined {
				var joined struct {
					RoomID string `json:"room_id"`
				}
				if json.Unmarshal(packet.Data, &joined) == nil {
					st.roomID = joined.RoomID
				}
			}
		}
	}()

	go func() {
		<-interrupt
		log.Println("Interrupt received, closing connection.")
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("Write close error:", err)
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		os.Exit(0)
	}()

	log.Println("Client started. Type 'create <player>' to open a room.")

	reader := bufio.NewReader(os.Stdin)
	for {
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		var sendErr error
		switch fields[0] {
		case "create":
			if len(fields) < 2 {
				log.Println("usage: create <player> [mode] [timer]")
				continue
			}
			st.player = fields[1]
			event := map[string]any{"player": st.player}
			if len(fields) > 2 {
				event["mode"] = fields[2]
			}
			if len(fields) > 3 {
				event["timer"], _ = strconv.Atoi(fields[3])
			}
			sendErr = send(c, network.MsgTypeCreateRoom, event)
		case "join":
			if len(fields) < 3 {
				log.Println("usage: join <room_id> <player>")
				continue
			}
			st.roomID, st.player = fields[1], fields[2]
			sendErr = send(c, network.MsgTypeJoinRoom, map[string]any{"room_id": st.roomID, "player": st.player})
		case "mode":
			if len(fields) < 2 {
				log.Println("usage: mode <mode> [timer]")
				continue
			}
			event := map[string]any{"room_id": st.roomID, "mode": fields[1]}
			if len(fields) > 2 {
				event["timer"], _ = strconv.Atoi(fields[2])
			}
			sendErr = send(c, network.MsgTypeSetMode, event)
		case "start":
			sendErr = send(c, network.MsgTypeStartGame, map[string]any{"room_id": st.roomID, "player": st.player})
		case "guess":
			if len(fields) < 2 {
				log.Println("usage: guess <name>")
				continue
			}
			sendErr = send(c, network.MsgTypeMakeGuess, map[string]any{
				"room_id": st.roomID, "player": st.player, "guess": strings.Join(fields[1:], " "),
			})
		case "attr":
			if len(fields) < 3 {
				log.Println("usage: attr <attribute> <value>")
				continue
			}
			sendErr = send(c, network.MsgTypeGuessAttribute, map[string]any{
				"room_id": st.roomID, "player": st.player,
				"attribute": fields[1], "value": strings.Join(fields[2:], " "),
			})
		case "skip":
			sendErr = send(c, network.MsgTypeSkipCharacter, map[string]any{"room_id": st.roomID})
		default:
			log.Printf("Unknown command %q", fields[0])
			continue
		}

		if sendErr != nil {
			log.Println("Write error:", sendErr)
			return
		}
	}
}
